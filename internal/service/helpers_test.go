package service

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"clubcorra/internal/config"
	dbpkg "clubcorra/internal/db"
	"clubcorra/internal/db/dbtest"
	"clubcorra/internal/domain"
	"clubcorra/internal/notify"
	"clubcorra/internal/sender"
	"clubcorra/internal/utils"
)

type captureSender struct {
	mu   sync.Mutex
	msgs []sender.Message
	err  error
}

func (c *captureSender) Send(_ context.Context, m sender.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, m)
	return nil
}

func (c *captureSender) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

var codePattern = regexp.MustCompile(`\b(\d{6})\b`)

// lastCode extracts the code from the most recent message
func (c *captureSender) lastCode(t *testing.T) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.msgs)
	m := codePattern.FindStringSubmatch(c.msgs[len(c.msgs)-1].Body)
	require.Len(t, m, 2)
	return m[1]
}

type recordPublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recordPublisher) Publish(_ context.Context, e notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordPublisher) types() []notify.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func newCache(t *testing.T) (*utils.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return utils.NewCache(rdb), mr
}

// seededDB returns a migrated database with default categories and config rows
func seededDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb := dbtest.New(t)
	require.NoError(t, dbpkg.Seed(gdb, &config.Config{}))
	return gdb
}

func mkUser(t *testing.T, gdb *gorm.DB, mobile string, balance int64) *domain.User {
	t.Helper()
	u := domain.User{MobileNumber: mobile, Status: domain.UserStatusActive, IsMobileVerified: true}
	require.NoError(t, gdb.Create(&u).Error)
	require.NoError(t, gdb.Create(&domain.CoinBalance{UserID: u.ID, Balance: balance}).Error)
	return &u
}

func mkBrand(t *testing.T, gdb *gorm.DB, name, earn, redeem string) *domain.Brand {
	t.Helper()
	b := domain.Brand{
		Name:                 name,
		EarningPercentage:    decimal.RequireFromString(earn),
		RedemptionPercentage: decimal.RequireFromString(redeem),
		IsActive:             true,
	}
	require.NoError(t, gdb.Create(&b).Error)
	return &b
}

func balanceOf(t *testing.T, gdb *gorm.DB, userID uint) domain.CoinBalance {
	t.Helper()
	var b domain.CoinBalance
	require.NoError(t, gdb.Where("user_id = ?", userID).First(&b).Error)
	return b
}

func yesterday() time.Time {
	return time.Now().Add(-24 * time.Hour)
}
