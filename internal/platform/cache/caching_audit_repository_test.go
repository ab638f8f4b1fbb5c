package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"

	"trade_integrity/internal/feature/integrity/domain/entity"
	"trade_integrity/internal/feature/integrity/usecase"
)

// mockAuditRepository はテスト用のAuditRepositoryモック実装です。
type mockAuditRepository struct {
	saveFn   func(ctx context.Context, result *entity.AuditResult) error
	latestFn func(ctx context.Context, instrument string, interval entity.Timeframe) (*entity.AuditResult, error)
	listFn   func(ctx context.Context, instrument string, limit int) ([]entity.AuditResult, error)
}

func (m *mockAuditRepository) Save(ctx context.Context, result *entity.AuditResult) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, result)
	}
	return nil
}

func (m *mockAuditRepository) Latest(ctx context.Context, instrument string, interval entity.Timeframe) (*entity.AuditResult, error) {
	if m.latestFn != nil {
		return m.latestFn(ctx, instrument, interval)
	}
	return nil, nil
}

func (m *mockAuditRepository) List(ctx context.Context, instrument string, limit int) ([]entity.AuditResult, error) {
	if m.listFn != nil {
		return m.listFn(ctx, instrument, limit)
	}
	return nil, nil
}

// fixedNow は1分足の区切りから30秒経過した時刻です。
var fixedNow = time.Date(2024, 1, 1, 10, 0, 30, 0, time.UTC)

func sampleAudit() *entity.AuditResult {
	tr := entity.Trade{ID: 9, Timestamp: 1_704_103_200_500, Price: decimal.RequireFromString("101.5"), Quantity: decimal.RequireFromString("0.2"), Side: entity.SideBuy}
	return &entity.AuditResult{
		ID:         "a-1",
		Instrument: "ETH_CRO",
		Interval:   entity.OneMinute,
		Status:     entity.AuditStatusViolationsFound,
		NumCandles: 10,
		NumTrades:  40,
		Report: entity.ValidationReport{
			Violations: []entity.Violation{{
				Rule:       entity.RuleHigh,
				Group:      entity.IntervalGroup{Candle: entity.Candle{Instrument: "ETH_CRO", Interval: entity.OneMinute, IntervalMarker: 1_704_103_200_000}, Trades: []entity.Trade{tr}},
				TradeCount: 1,
				Trade:      &tr,
			}},
			AnalyzedIntervalCount: 8,
		},
		CreatedAt: fixedNow,
	}
}

// TestNewCachingAuditRepository_Defaults はデフォルト値（TTLとnamespace）が正しく設定されることを検証します。
func TestNewCachingAuditRepository_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		ttl               time.Duration
		namespace         string
		expectedTTL       time.Duration
		expectedNamespace string
	}{
		{"default values when zero/empty", 0, "", 5 * time.Minute, "audits"},
		{"negative ttl uses default", -1 * time.Minute, "", 5 * time.Minute, "audits"},
		{"custom values preserved", 10 * time.Minute, "custom", 10 * time.Minute, "custom"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := NewCachingAuditRepository(nil, tt.ttl, &mockAuditRepository{}, tt.namespace)

			if repo.ttl != tt.expectedTTL {
				t.Errorf("expected TTL %v, got %v", tt.expectedTTL, repo.ttl)
			}
			if repo.namespace != tt.expectedNamespace {
				t.Errorf("expected namespace %q, got %q", tt.expectedNamespace, repo.namespace)
			}
		})
	}
}

// TestCachingAuditRepository_Latest_NilRedis はRedisがnilの場合にキャッシュをバイパスすることを検証します。
func TestCachingAuditRepository_Latest_NilRedis(t *testing.T) {
	t.Parallel()

	inner := &mockAuditRepository{
		latestFn: func(ctx context.Context, instrument string, interval entity.Timeframe) (*entity.AuditResult, error) {
			return sampleAudit(), nil
		},
	}

	repo := NewCachingAuditRepository(nil, 5*time.Minute, inner, "audits")
	got, err := repo.Latest(context.Background(), "ETH_CRO", entity.OneMinute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "a-1" {
		t.Errorf("expected audit a-1, got %q", got.ID)
	}
}

// TestCachingAuditRepository_Latest_CacheHit はキャッシュヒット時に内部リポジトリを呼ばないことを検証します。
func TestCachingAuditRepository_Latest_CacheHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cachedJSON, _ := json.Marshal(sampleAudit())
	mock.ExpectGet("audits:latest:ETH_CRO:1m").SetVal(string(cachedJSON))

	innerCalled := false
	inner := &mockAuditRepository{
		latestFn: func(ctx context.Context, instrument string, interval entity.Timeframe) (*entity.AuditResult, error) {
			innerCalled = true
			return nil, nil
		},
	}

	repo := NewCachingAuditRepository(rdb, 5*time.Minute, inner, "audits")
	got, err := repo.Latest(context.Background(), "ETH_CRO", entity.OneMinute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if innerCalled {
		t.Error("inner repository should not be called on cache hit")
	}
	if len(got.Report.Violations) != 1 || got.Report.Violations[0].Rule != entity.RuleHigh {
		t.Errorf("unexpected violations after decode: %+v", got.Report.Violations)
	}
	if got.Report.Violations[0].TradeCount != 1 {
		t.Errorf("trade count not preserved: %d", got.Report.Violations[0].TradeCount)
	}
	if !got.Report.Violations[0].Trade.Price.Equal(decimal.RequireFromString("101.5")) {
		t.Errorf("trade price not preserved: %s", got.Report.Violations[0].Trade.Price)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingAuditRepository_Latest_CacheMiss はキャッシュミス時にDBから取得し、次の区切りまでのTTLで保存することを検証します。
func TestCachingAuditRepository_Latest_CacheMiss(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expected := sampleAudit()
	expectedJSON, _ := json.Marshal(expected)

	mock.ExpectGet("audits:latest:ETH_CRO:1m").RedisNil()
	mock.ExpectSet("audits:latest:ETH_CRO:1m", expectedJSON, 30*time.Second).SetVal("OK")

	inner := &mockAuditRepository{
		latestFn: func(ctx context.Context, instrument string, interval entity.Timeframe) (*entity.AuditResult, error) {
			return expected, nil
		},
	}

	repo := NewCachingAuditRepository(rdb, 5*time.Minute, inner, "audits")
	repo.now = func() time.Time { return fixedNow }

	got, err := repo.Latest(context.Background(), "ETH_CRO", entity.OneMinute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != expected.ID {
		t.Errorf("expected %q, got %q", expected.ID, got.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingAuditRepository_Latest_NotFound は未検出エラーが伝播され、キャッシュされないことを検証します。
func TestCachingAuditRepository_Latest_NotFound(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("audits:latest:BTC_USDT:1h").RedisNil()

	inner := &mockAuditRepository{
		latestFn: func(ctx context.Context, instrument string, interval entity.Timeframe) (*entity.AuditResult, error) {
			return nil, usecase.ErrAuditNotFound
		},
	}

	repo := NewCachingAuditRepository(rdb, 5*time.Minute, inner, "audits")
	_, err := repo.Latest(context.Background(), "BTC_USDT", entity.OneHour)
	if !errors.Is(err, usecase.ErrAuditNotFound) {
		t.Errorf("expected ErrAuditNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingAuditRepository_Latest_CorruptedCache は破損したキャッシュを削除してDBにフォールバックすることを検証します。
func TestCachingAuditRepository_Latest_CorruptedCache(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expected := sampleAudit()
	expectedJSON, _ := json.Marshal(expected)

	mock.ExpectGet("audits:latest:ETH_CRO:1m").SetVal("invalid json")
	mock.ExpectDel("audits:latest:ETH_CRO:1m").SetVal(1)
	mock.ExpectSet("audits:latest:ETH_CRO:1m", expectedJSON, 30*time.Second).SetVal("OK")

	inner := &mockAuditRepository{
		latestFn: func(ctx context.Context, instrument string, interval entity.Timeframe) (*entity.AuditResult, error) {
			return expected, nil
		},
	}

	repo := NewCachingAuditRepository(rdb, 5*time.Minute, inner, "audits")
	repo.now = func() time.Time { return fixedNow }

	if _, err := repo.Latest(context.Background(), "ETH_CRO", entity.OneMinute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingAuditRepository_List_CacheMiss は一覧がキャッシュされることを検証します。
func TestCachingAuditRepository_List_CacheMiss(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expected := []entity.AuditResult{*sampleAudit()}
	expectedJSON, _ := json.Marshal(expected)

	mock.ExpectGet("audits:list:*all:20").RedisNil()
	mock.ExpectSet("audits:list:*all:20", expectedJSON, 5*time.Minute).SetVal("OK")

	inner := &mockAuditRepository{
		listFn: func(ctx context.Context, instrument string, limit int) ([]entity.AuditResult, error) {
			return expected, nil
		},
	}

	repo := NewCachingAuditRepository(rdb, 5*time.Minute, inner, "audits")
	got, err := repo.List(context.Background(), "", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 audit, got %d", len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingAuditRepository_Save_Invalidation は保存後に最新キーと一覧キーが無効化されることを検証します。
func TestCachingAuditRepository_Save_Invalidation(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectDel("audits:latest:ETH_CRO:1m").SetVal(1)
	mock.ExpectScan(0, "audits:list:*", 200).SetVal([]string{"audits:list:*all:20", "audits:list:ETH_CRO:5"}, 0)
	mock.ExpectDel("audits:list:*all:20", "audits:list:ETH_CRO:5").SetVal(2)

	saved := false
	inner := &mockAuditRepository{
		saveFn: func(ctx context.Context, result *entity.AuditResult) error {
			saved = true
			return nil
		},
	}

	repo := NewCachingAuditRepository(rdb, 5*time.Minute, inner, "audits")
	if err := repo.Save(context.Background(), sampleAudit()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !saved {
		t.Error("expected inner repository to be called")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingAuditRepository_Save_InnerError は内部リポジトリのエラーが伝播され、キャッシュに触れないことを検証します。
func TestCachingAuditRepository_Save_InnerError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedErr := errors.New("insert error")
	inner := &mockAuditRepository{
		saveFn: func(ctx context.Context, result *entity.AuditResult) error {
			return expectedErr
		},
	}

	repo := NewCachingAuditRepository(rdb, 5*time.Minute, inner, "audits")
	err := repo.Save(context.Background(), sampleAudit())

	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestSafe はsafe関数がRedisキーで問題となる文字を正しくエスケープすることを検証します。
func TestSafe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"ETH_CRO", "ETH_CRO"},
		{"BTC USD", "BTC+USD"},
		{"BTC+USD", "BTC%2BUSD"},
		{"key:value", "key%3Avalue"},
		{"A*", "A%2A"},
		{"", ""},
		{"::", "%3A%3A"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := safe(tt.input); got != tt.expected {
				t.Errorf("safe(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestCachingAuditRepository_KeysAreDistinct は区切り文字を含む銘柄同士が同じキーを共有しないことを検証します。
func TestCachingAuditRepository_KeysAreDistinct(t *testing.T) {
	t.Parallel()

	repo := NewCachingAuditRepository(nil, 0, &mockAuditRepository{}, "")

	pairs := [][2]string{
		{"A:B", "A_B"},
		{"A B", "A_B"},
		{"A:B", "A B"},
		{"_all", ""},
	}
	for _, p := range pairs {
		if a, b := repo.latestKey(p[0], entity.OneMinute), repo.latestKey(p[1], entity.OneMinute); a == b {
			t.Errorf("latest keys collide for %q and %q: %s", p[0], p[1], a)
		}
		if a, b := repo.listKey(p[0], 20), repo.listKey(p[1], 20); a == b {
			t.Errorf("list keys collide for %q and %q: %s", p[0], p[1], a)
		}
	}

	if got := repo.latestKey("A:B", entity.OneMinute); got != "audits:latest:A%3AB:1m" {
		t.Errorf("unexpected latest key: %s", got)
	}
}
