package order

import (
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeOrders(t *testing.T, cal *Calendar, n int) []Order {
	t.Helper()
	faker := gofakeit.New(42)
	start := cal.ParseDate("2024-02-01")
	orders := make([]Order, 0, n)
	for i := 0; i < n; i++ {
		o := Order{
			ID:       fmt.Sprintf("DH%03d", i),
			Code:     fmt.Sprintf("HQ-%04d", i),
			Date:     start.AddDate(0, 0, faker.IntRange(0, 9)),
			Time:     NewTimeOfDay(faker.IntRange(6, 20), faker.IntRange(0, 59)),
			Total:    decimal.NewFromInt(int64(faker.IntRange(1, 40) * 50000)),
			Status:   AllStatuses()[faker.IntRange(0, len(AllStatuses())-1)],
			Customer: Customer{Name: faker.Name(), Phone: faker.Phone()},
			Branch:   faker.RandomString([]string{"Ngọc Hải 1", "Ngọc Hải 2"}),
		}
		if i%7 == 0 {
			o.Time = TimeOfDay{}
		}
		orders = append(orders, o)
	}
	return orders
}

func assertBucketInvariants(t *testing.T, cal *Calendar, input []Order, buckets []DayBucket) {
	t.Helper()
	seen := make(map[string]int)
	total := 0
	for i, b := range buckets {
		if i > 0 {
			assert.Less(t, buckets[i-1].Key, b.Key, "buckets ascend by date")
		}
		sum := decimal.Zero
		for j, o := range b.Orders {
			assert.Equal(t, b.Key, cal.Key(o.Date), "order sits in its own date bucket")
			seen[o.ID]++
			sum = sum.Add(o.Total)
			if j > 0 {
				assert.False(t, o.Time.Before(b.Orders[j-1].Time), "orders ascend by time of day")
			}
		}
		assert.True(t, sum.Equal(b.Revenue), "bucket revenue equals member total")
		assert.Equal(t, len(b.Orders), b.Count())
		total += b.Count()
	}
	assert.Equal(t, len(input), total)
	for _, o := range input {
		assert.Equal(t, 1, seen[o.ID], "order %s appears exactly once", o.ID)
	}
}

func TestGroupByDay_Invariants(t *testing.T) {
	cal := MustCalendar(DefaultTimezone)
	orders := fakeOrders(t, cal, 120)

	buckets := cal.GroupByDay(orders)
	require.NotEmpty(t, buckets)
	assertBucketInvariants(t, cal, orders, buckets)
}

func TestGroupByDay_InvariantsHoldAfterFiltering(t *testing.T) {
	cal := MustCalendar(DefaultTimezone)
	orders := fakeOrders(t, cal, 120)

	filters := []Filter{
		{Status: StatusPending},
		{Branch: "ngoc hai 2"},
		{Date: cal.ParseDate("2024-02-03")},
		{Status: StatusDelivered, Branch: "Ngọc Hải 1"},
	}
	for _, f := range filters {
		filtered := cal.Filter(orders, f)
		assertBucketInvariants(t, cal, filtered, cal.GroupByDay(filtered))
	}
}

func TestGroupByDay_Idempotent(t *testing.T) {
	cal := MustCalendar(DefaultTimezone)
	orders := fakeOrders(t, cal, 60)

	first := cal.GroupByDay(orders)
	second := cal.GroupByDay(orders)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Key, second[i].Key)
		require.Len(t, second[i].Orders, len(first[i].Orders))
		for j := range first[i].Orders {
			assert.Equal(t, first[i].Orders[j].ID, second[i].Orders[j].ID)
		}
	}
}

func TestGroupByDay_StableTiesAndUnsetTimes(t *testing.T) {
	cal := MustCalendar(DefaultTimezone)
	day := cal.ParseDate("2024-02-10")
	orders := []Order{
		{ID: "late", Date: day, Time: ParseTimeOfDay("10:00")},
		{ID: "unset", Date: day},
		{ID: "early", Date: day, Time: ParseTimeOfDay("9:00")},
		{ID: "tie", Date: day, Time: ParseTimeOfDay("10:00")},
	}

	buckets := cal.GroupByDay(orders)
	require.Len(t, buckets, 1)
	var ids []string
	for _, o := range buckets[0].Orders {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []string{"early", "late", "tie", "unset"}, ids)
	assert.Equal(t, "1/1 ÂL", buckets[0].LunarLabel)
	assert.Equal(t, "Thứ 7", buckets[0].Weekday)
}

func TestGroupByDay_UndatedOrdersLast(t *testing.T) {
	cal := MustCalendar(DefaultTimezone)
	orders := []Order{
		{ID: "a", LunarLabel: "3/4 ÂL"},
		{ID: "b", Date: cal.ParseDate("2024-03-01")},
	}

	buckets := cal.GroupByDay(orders)
	require.Len(t, buckets, 2)
	assert.Equal(t, "2024-03-01", buckets[0].Key)
	assert.Equal(t, "", buckets[1].Key)
	assert.Equal(t, "3/4 ÂL", buckets[1].LunarLabel)
}

func TestGroupByDay_Empty(t *testing.T) {
	cal := MustCalendar(DefaultTimezone)
	assert.Empty(t, cal.GroupByDay(nil))
	assert.True(t, TotalRevenue(nil).IsZero())
}

func TestGroupByDay_BucketsInConfiguredZone(t *testing.T) {
	cal := MustCalendar(DefaultTimezone)
	late := time.Date(2024, 2, 9, 20, 0, 0, 0, time.UTC)
	orders := []Order{{ID: "x", Date: cal.Truncate(late)}}

	buckets := cal.GroupByDay(orders)
	require.Len(t, buckets, 1)
	assert.Equal(t, "2024-02-10", buckets[0].Key)
}
