package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escala/rotation-engine/rotation"
	"github.com/escala/rotation-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testEntry(date string, typ rotation.EntryType, vendors ...rotation.VendorID) rotation.ScheduleEntry {
	return rotation.ScheduleEntry{
		ID:        rotation.NewEntryID(),
		Date:      rotation.MustParseDate(date),
		Type:      typ,
		VendorIDs: vendors,
	}
}

func TestFetchAll_UnknownOwnerIsEmpty(t *testing.T) {
	store := newTestStore(t)
	data, err := store.FetchAll(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, data.Vendors)
	assert.Empty(t, data.Holidays)
	assert.Empty(t, data.Schedules)
}

func TestVendors_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	vendors := []rotation.Vendor{
		{ID: "v-1", Name: "Ana", Active: true},
		{ID: "v-2", Name: "Bia", Active: true},
	}
	require.NoError(t, store.InsertVendors(ctx, "owner-1", vendors))

	// Owner scoping: another owner sees nothing.
	other, err := store.FetchAll(ctx, "owner-2")
	require.NoError(t, err)
	assert.Empty(t, other.Vendors)

	require.NoError(t, store.UpdateVendor(ctx, "owner-1", rotation.Vendor{
		ID: "v-1", Name: "Ana Paula", Active: false,
	}))
	require.NoError(t, store.DeleteVendor(ctx, "owner-1", "v-2"))

	data, err := store.FetchAll(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, data.Vendors, 1)
	assert.Equal(t, "Ana Paula", data.Vendors[0].Name)
	assert.False(t, data.Vendors[0].Active)
}

func TestVendors_NotFoundSentinels(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.UpdateVendor(ctx, "owner-1", rotation.Vendor{ID: "missing"})
	assert.ErrorIs(t, err, rotation.ErrVendorNotFound)
	assert.ErrorIs(t, store.DeleteVendor(ctx, "owner-1", "missing"), rotation.ErrVendorNotFound)
}

func TestHolidays_ReplaceIsWholesale(t *testing.T) {
	// GIVEN: A year with one stored holiday
	// WHEN: ReplaceHolidays with a different set
	// THEN: Only the new set remains; other years are untouched

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertHolidays(ctx, "owner-1", 2024, []rotation.Holiday{
		{ID: "h-1", Date: rotation.MustParseDate("2024-01-25"), Name: "Aniversário da Cidade"},
	}))
	require.NoError(t, store.InsertHolidays(ctx, "owner-1", 2025, []rotation.Holiday{
		{ID: "h-2", Date: rotation.MustParseDate("2025-01-01"), Name: "Ano Novo"},
	}))

	require.NoError(t, store.ReplaceHolidays(ctx, "owner-1", 2024, []rotation.Holiday{
		{ID: "h-3", Date: rotation.MustParseDate("2024-12-25"), Name: "Natal"},
	}))

	data, err := store.FetchAll(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, data.Holidays[2024], 1)
	assert.Equal(t, "Natal", data.Holidays[2024][0].Name)
	assert.Len(t, data.Holidays[2025], 1)
}

func TestSaveSchedule_ReplacesEntries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := &rotation.Schedule{
		Year:          2024,
		VendorsPerDay: rotation.TwoPerDay,
		Entries: []rotation.ScheduleEntry{
			testEntry("2024-01-07", rotation.EntrySunday, "v-1", "v-2"),
			testEntry("2024-01-14", rotation.EntrySunday, "v-1"),
		},
	}
	require.NoError(t, store.SaveSchedule(ctx, "owner-1", first))

	second := &rotation.Schedule{
		Year:          2024,
		VendorsPerDay: rotation.ThreePerDay,
		Entries: []rotation.ScheduleEntry{
			testEntry("2024-01-07", rotation.EntrySunday, "v-2"),
		},
	}
	require.NoError(t, store.SaveSchedule(ctx, "owner-1", second))

	data, err := store.FetchAll(ctx, "owner-1")
	require.NoError(t, err)
	got := data.Schedules[2024]
	require.NotNil(t, got)
	assert.Equal(t, rotation.ThreePerDay, got.VendorsPerDay)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, []rotation.VendorID{"v-2"}, got.Entries[0].VendorIDs)
}

func TestUpdateEntry_PersistsAllFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry := testEntry("2024-01-07", rotation.EntrySunday, "v-1", "v-2")
	require.NoError(t, store.SaveSchedule(ctx, "owner-1", &rotation.Schedule{
		Year:          2024,
		VendorsPerDay: rotation.TwoPerDay,
		Entries:       []rotation.ScheduleEntry{entry},
	}))

	entry.Closed = true
	entry.Locked = true
	entry.VendorIDs = nil
	entry.Note = "loja fechada"
	require.NoError(t, store.UpdateEntry(ctx, "owner-1", 2024, entry))

	data, err := store.FetchAll(ctx, "owner-1")
	require.NoError(t, err)
	got := data.Schedules[2024].Entry(entry.ID)
	require.NotNil(t, got)
	assert.True(t, got.Closed)
	assert.True(t, got.Locked)
	assert.Empty(t, got.VendorIDs)
	assert.Equal(t, "loja fechada", got.Note)
}

func TestUpdateEntry_NotFound(t *testing.T) {
	store := newTestStore(t)
	err := store.UpdateEntry(context.Background(), "owner-1", 2024,
		testEntry("2024-01-07", rotation.EntrySunday))
	assert.ErrorIs(t, err, rotation.ErrEntryNotFound)
}

func TestSetEntriesLocked_TargetsOnlyGivenIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := testEntry("2024-01-07", rotation.EntrySunday, "v-1")
	b := testEntry("2024-01-14", rotation.EntrySunday, "v-1")
	require.NoError(t, store.SaveSchedule(ctx, "owner-1", &rotation.Schedule{
		Year:          2024,
		VendorsPerDay: rotation.TwoPerDay,
		Entries:       []rotation.ScheduleEntry{a, b},
	}))

	require.NoError(t, store.SetEntriesLocked(ctx, "owner-1", []rotation.EntryID{a.ID}, true))

	data, err := store.FetchAll(ctx, "owner-1")
	require.NoError(t, err)
	assert.True(t, data.Schedules[2024].Entry(a.ID).Locked)
	assert.False(t, data.Schedules[2024].Entry(b.ID).Locked)
}

func TestClearUnlockedVendors_SkipsLocked(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	locked := testEntry("2024-01-07", rotation.EntrySunday, "v-1", "v-2")
	locked.Locked = true
	open := testEntry("2024-01-14", rotation.EntrySunday, "v-1")
	require.NoError(t, store.SaveSchedule(ctx, "owner-1", &rotation.Schedule{
		Year:          2024,
		VendorsPerDay: rotation.TwoPerDay,
		Entries:       []rotation.ScheduleEntry{locked, open},
	}))

	require.NoError(t, store.ClearUnlockedVendors(ctx, "owner-1", 2024))

	data, err := store.FetchAll(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, data.Schedules[2024].Entry(locked.ID).VendorIDs, 2)
	assert.Empty(t, data.Schedules[2024].Entry(open.ID).VendorIDs)
}

func TestDeleteSchedule_CascadesToEntries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSchedule(ctx, "owner-1", &rotation.Schedule{
		Year:          2024,
		VendorsPerDay: rotation.TwoPerDay,
		Entries:       []rotation.ScheduleEntry{testEntry("2024-01-07", rotation.EntrySunday, "v-1")},
	}))
	require.NoError(t, store.DeleteSchedule(ctx, "owner-1", 2024))

	data, err := store.FetchAll(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, data.Schedules)
}
