package usecase

import "time"

// SetNow はテスト用に現在時刻を差し替えます。
func (u *IntegrityUsecase) SetNow(now func() time.Time) {
	u.now = now
}
