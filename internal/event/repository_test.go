package event

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/whatson-events/whatson-backend/internal/geo"
	"github.com/whatson-events/whatson-backend/internal/vendor"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&vendor.Vendor{}, &Event{}))
	return db
}

func seedVendor(t *testing.T, db *gorm.DB) *vendor.Vendor {
	t.Helper()
	v := &vendor.Vendor{
		Name:         "The Corner Cafe",
		Email:        "cafe@example.com",
		PasswordHash: "x",
		Address:      "12 High Street",
		Postcode:     "AB12CD",
		Coords:       geo.Coordinates{Lat: 51.0, Lng: 1.0},
		Photo:        "cafe.png",
	}
	require.NoError(t, db.Create(v).Error)
	return v
}

func TestCreateWithVendorCommitsBothWrites(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	v := seedVendor(t, db)

	e := &Event{
		Title:    "Open mic",
		Date:     time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
		Time:     "7pm til late",
		VendorID: v.ID,
	}
	require.NoError(t, repo.CreateWithVendor(context.Background(), e))
	require.NotZero(t, e.ID)

	var stored vendor.Vendor
	require.NoError(t, db.First(&stored, v.ID).Error)
	assert.EqualValues(t, 1, stored.EventCount)
}

func TestCreateWithVendorRollsBackOnMissingVendor(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	e := &Event{
		Title:    "Orphan",
		Date:     time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
		Time:     "8pm",
		VendorID: 999,
	}
	err := repo.CreateWithVendor(context.Background(), e)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	require.NoError(t, db.Model(&Event{}).Count(&count).Error)
	assert.Zero(t, count, "event row rolled back with the failed vendor write")
}

func TestDeleteWithVendorDecrementsCount(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	v := seedVendor(t, db)

	e := &Event{
		Title:    "Short lived",
		Date:     time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
		Time:     "8pm",
		VendorID: v.ID,
	}
	require.NoError(t, repo.CreateWithVendor(context.Background(), e))
	require.NoError(t, repo.DeleteWithVendor(context.Background(), e))

	var stored vendor.Vendor
	require.NoError(t, db.First(&stored, v.ID).Error)
	assert.EqualValues(t, 0, stored.EventCount)

	_, err := repo.FindByID(context.Background(), e.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteWithVendorMissingEvent(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	v := seedVendor(t, db)

	err := repo.DeleteWithVendor(context.Background(), &Event{ID: 123, VendorID: v.ID})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var stored vendor.Vendor
	require.NoError(t, db.First(&stored, v.ID).Error)
	assert.EqualValues(t, 0, stored.EventCount, "count untouched when nothing was deleted")
}

func TestFindByIDPreloadsVendorWithoutHash(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	v := seedVendor(t, db)

	e := &Event{Title: "Detail view", Date: time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC), Time: "8pm", VendorID: v.ID}
	require.NoError(t, repo.CreateWithVendor(context.Background(), e))

	got, err := repo.FindByID(context.Background(), e.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Vendor)
	assert.Equal(t, v.Email, got.Vendor.Email)
	assert.Empty(t, got.Vendor.PasswordHash)
}

func TestListByDateExactDay(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	v := seedVendor(t, db)

	day := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	for _, e := range []*Event{
		{Title: "On the day", Date: day, Time: "8pm", VendorID: v.ID},
		{Title: "Also on the day", Date: day, Time: "9pm", VendorID: v.ID},
		{Title: "Day before", Date: day.AddDate(0, 0, -1), Time: "8pm", VendorID: v.ID},
		{Title: "Day after", Date: day.AddDate(0, 0, 1), Time: "8pm", VendorID: v.ID},
	} {
		require.NoError(t, repo.CreateWithVendor(context.Background(), e))
	}

	events, err := repo.ListByDate(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, events, 2)
	for _, e := range events {
		assert.NotNil(t, e.Vendor, "vendor preloaded for fallback resolution")
	}
}

func TestListByVendorSplitAndOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	v := seedVendor(t, db)

	cutoff := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	dates := []time.Time{
		cutoff.AddDate(0, 0, -10),
		cutoff.AddDate(0, 0, -1),
		cutoff,
		cutoff.AddDate(0, 0, 7),
	}
	for i, d := range dates {
		e := &Event{Title: "E", Date: d, Time: "8pm", VendorID: v.ID}
		require.NoError(t, repo.CreateWithVendor(context.Background(), e), "event %d", i)
	}

	past, err := repo.ListByVendor(context.Background(), v.ID, cutoff, true)
	require.NoError(t, err)
	require.Len(t, past, 2)
	assert.True(t, past[0].Date.After(past[1].Date), "past ordered most recent first")

	upcoming, err := repo.ListByVendor(context.Background(), v.ID, cutoff, false)
	require.NoError(t, err)
	require.Len(t, upcoming, 2, "cutoff day itself counts as upcoming")
	assert.True(t, upcoming[0].Date.Before(upcoming[1].Date), "upcoming ordered soonest first")
}

func TestListAllByVendorOldestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	v := seedVendor(t, db)

	base := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	for _, offset := range []int{3, -2, 0} {
		e := &Event{Title: "E", Date: base.AddDate(0, 0, offset), Time: "8pm", VendorID: v.ID}
		require.NoError(t, repo.CreateWithVendor(context.Background(), e))
	}

	events, err := repo.ListAllByVendor(context.Background(), v.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.True(t, events[0].Date.Before(events[1].Date))
	assert.True(t, events[1].Date.Before(events[2].Date))
}
