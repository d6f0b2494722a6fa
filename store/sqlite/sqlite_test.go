package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trotech/dealer-core/closing"
	"github.com/trotech/dealer-core/ledger"
	"github.com/trotech/dealer-core/notify"
	"github.com/trotech/dealer-core/sales"
	"github.com/trotech/dealer-core/staff"
	"github.com/trotech/dealer-core/store/sqlite"
	"github.com/trotech/dealer-core/workshop"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

var testTime = time.Date(2024, time.June, 3, 14, 30, 45, 123456789, time.UTC)

func testPart() ledger.Part {
	return ledger.Part{
		ID:          "p1",
		Name:        "Front Brake Pad Set",
		PartNumber:  "06455-KRE-K01",
		Category:    ledger.CategoryBraking,
		Stock:       12,
		Price:       ledger.Money(4200),
		CostPrice:   ledger.Money(3100.50),
		MinStock:    15,
		LastUpdated: ledger.NewDate(2024, time.May, 20),
	}
}

// =============================================================================
// PARTS
// =============================================================================

func TestPart_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	want := testPart()

	require.NoError(t, store.SavePart(ctx, want))

	got, err := store.GetPart(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.PartNumber, got.PartNumber)
	assert.Equal(t, want.Category, got.Category)
	assert.Equal(t, want.Stock, got.Stock)
	assert.True(t, want.Price.Equal(got.Price), "price %s != %s", want.Price, got.Price)
	assert.True(t, want.CostPrice.Equal(got.CostPrice))
	assert.Equal(t, want.MinStock, got.MinStock)
	assert.Equal(t, "2024-05-20", got.LastUpdated.String())
}

func TestPart_Missing_ReturnsNil(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetPart(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPart_SaveOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	p := testPart()
	require.NoError(t, store.SavePart(ctx, p))

	p.Stock = 7
	p.Name = "Renamed"
	require.NoError(t, store.SavePart(ctx, p))

	got, err := store.GetPart(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)
	assert.Equal(t, "Renamed", got.Name)

	all, err := store.ListParts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPart_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SavePart(ctx, testPart()))

	require.NoError(t, store.DeletePart(ctx, "p1"))

	got, err := store.GetPart(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

// =============================================================================
// AUDIT LOG
// =============================================================================

func TestLogs_RoundTripAndOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := ledger.LogEntry{
		ID: "l1", PartID: "p1", PartName: "Pads", Change: -2,
		Reason: ledger.ReasonSale, ReferenceID: "sale-1",
		CreatedAt: testTime, Actor: "Asif",
	}
	second := ledger.LogEntry{
		ID: "l2", PartID: "p1", PartName: "Pads", Change: 10,
		Reason:    ledger.ReasonRestock,
		CreatedAt: testTime.Add(time.Minute), Actor: "System",
	}
	require.NoError(t, store.AppendLog(ctx, first))
	require.NoError(t, store.AppendLog(ctx, second))

	logs, err := store.ListLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "l2", logs[0].ID, "newest first")

	got := logs[1]
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, first.Change, got.Change)
	assert.Equal(t, first.Reason, got.Reason)
	assert.Equal(t, first.ReferenceID, got.ReferenceID)
	assert.Equal(t, first.Actor, got.Actor)
	assert.True(t, first.CreatedAt.Equal(got.CreatedAt), "timestamp %s != %s", first.CreatedAt, got.CreatedAt)
}

func TestLogsByPart_Filters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.AppendLog(ctx, ledger.LogEntry{
		ID: "l1", PartID: "p1", PartName: "A", Change: -1,
		Reason: ledger.ReasonSale, CreatedAt: testTime, Actor: "System",
	}))
	require.NoError(t, store.AppendLog(ctx, ledger.LogEntry{
		ID: "l2", PartID: "p2", PartName: "B", Change: -1,
		Reason: ledger.ReasonSale, CreatedAt: testTime, Actor: "System",
	}))

	logs, err := store.ListLogsByPart(ctx, "p2")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "l2", logs[0].ID)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestWithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: a part saved and a log appended inside a failing transaction
	// WHEN: the function returns an error
	// THEN: neither write survives

	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SavePart(ctx, testPart()))

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(s ledger.Store) error {
		p, err := s.GetPart(ctx, "p1")
		if err != nil {
			return err
		}
		p.Stock = 0
		if err := s.SavePart(ctx, *p); err != nil {
			return err
		}
		if err := s.AppendLog(ctx, ledger.LogEntry{
			ID: "l1", PartID: "p1", PartName: p.Name, Change: -12,
			Reason: ledger.ReasonSale, CreatedAt: testTime, Actor: "System",
		}); err != nil {
			return err
		}
		return boom
	})

	require.ErrorIs(t, err, boom)

	got, err := store.GetPart(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 12, got.Stock, "rolled-back write must not persist")

	logs, err := store.ListLogs(ctx)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SavePart(ctx, testPart()))

	err := store.WithTx(ctx, func(s ledger.Store) error {
		p, err := s.GetPart(ctx, "p1")
		if err != nil {
			return err
		}
		p.Stock -= 2
		return s.SavePart(ctx, *p)
	})
	require.NoError(t, err)

	got, _ := store.GetPart(ctx, "p1")
	assert.Equal(t, 10, got.Stock)
}

// =============================================================================
// SALES
// =============================================================================

func TestSale_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := sales.Sale{
		ID:           "s1",
		CustomerName: "Ali Khan",
		BikeModel:    "CG125",
		Items: []sales.LineItem{
			{PartID: "p1", PartName: "Engine Oil", Quantity: 2, UnitPrice: ledger.Money(1850)},
			{PartID: "p2", PartName: "Spark Plug", Quantity: 1, UnitPrice: ledger.Money(850)},
		},
		Subtotal:  ledger.Money(4550),
		Tax:       ledger.Money(0),
		Total:     ledger.Money(4550),
		Date:      ledger.NewDate(2024, time.June, 3),
		CreatedAt: testTime,
		Status:    sales.StatusPaid,
		CreatedBy: "Asif",
	}
	require.NoError(t, store.SaveSale(ctx, want))

	got, err := store.GetSale(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.CustomerName, got.CustomerName)
	assert.Equal(t, want.BikeModel, got.BikeModel)
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, want.CreatedBy, got.CreatedBy)
	assert.Equal(t, "2024-06-03", got.Date.String())
	assert.True(t, want.Total.Equal(got.Total))
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Engine Oil", got.Items[0].PartName)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.True(t, got.Items[0].UnitPrice.Equal(ledger.Money(1850)))
}

func TestSales_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"s1", "s2", "s3"} {
		require.NoError(t, store.SaveSale(ctx, sales.Sale{
			ID: id, CustomerName: "C", BikeModel: "M",
			Items:    []sales.LineItem{},
			Subtotal: ledger.Money(1), Total: ledger.Money(1),
			Date:      ledger.NewDate(2024, time.June, 3),
			CreatedAt: testTime.Add(time.Duration(i) * time.Minute),
			Status:    sales.StatusPaid,
		}))
	}

	open, err := store.ListSales(ctx)
	require.NoError(t, err)
	require.Len(t, open, 3)
	assert.Equal(t, "s3", open[0].ID)
	assert.Equal(t, "s1", open[2].ID)
}

// =============================================================================
// WORKSHOP JOBS
// =============================================================================

func TestJob_RoundTrip_Completed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := workshop.Job{
		ID:           "w1",
		CustomerName: "Bilal Ahmed",
		BikeModel:    "CB125F",
		ServiceType:  "Brake Service",
		ServicePrice: ledger.Money(800),
		Mechanic:     "Carlos",
		Status:       workshop.StatusCompleted,
		StartTime:    testTime,
		Date:         ledger.NewDate(2024, time.June, 3),
		PartsUsed: []workshop.UsedPart{
			{PartID: "p2", PartName: "Front Brake Pad Set", Quantity: 1, UnitPrice: ledger.Money(4200)},
		},
		AdditionalServices: []workshop.ExtraService{
			{Name: "Brake fluid flush", Price: ledger.Money(150)},
		},
		CompletedAt: testTime.Add(2 * time.Hour),
	}
	require.NoError(t, store.SaveJob(ctx, want))

	got, err := store.GetJob(ctx, "w1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, want.Mechanic, got.Mechanic)
	assert.True(t, want.ServicePrice.Equal(got.ServicePrice))
	assert.True(t, want.CompletedAt.Equal(got.CompletedAt))
	require.Len(t, got.PartsUsed, 1)
	assert.Equal(t, "Front Brake Pad Set", got.PartsUsed[0].PartName)
	require.Len(t, got.AdditionalServices, 1)
	assert.True(t, got.AdditionalServices[0].Price.Equal(ledger.Money(150)))
	assert.True(t, want.Total().Equal(got.Total()), "billable total survives the round trip")
}

func TestJob_RoundTrip_Queued(t *testing.T) {
	// A queued job has no bill yet: empty collections and a zero
	// completion time must come back exactly that way.

	store := newTestStore(t)
	ctx := context.Background()

	want := workshop.Job{
		ID:           "w2",
		CustomerName: "Sara Iqbal",
		BikeModel:    "CD70",
		ServiceType:  "Tune Up",
		ServicePrice: ledger.Money(500),
		Mechanic:     "Dave",
		Status:       workshop.StatusQueued,
		StartTime:    testTime,
		Date:         ledger.NewDate(2024, time.June, 3),
	}
	require.NoError(t, store.SaveJob(ctx, want))

	got, err := store.GetJob(ctx, "w2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, workshop.StatusQueued, got.Status)
	assert.Empty(t, got.PartsUsed)
	assert.Empty(t, got.AdditionalServices)
	assert.True(t, got.CompletedAt.IsZero())
}

// =============================================================================
// SHIFT ARCHIVAL
// =============================================================================

func TestDrainShift_AtomicMutation(t *testing.T) {
	// GIVEN: open sales and jobs
	// WHEN: draining the shift
	// THEN: the report is built from the drained records and stored, both
	//       collections are empty, and the marker advances, all in one
	//       transaction

	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveSale(ctx, sales.Sale{
		ID: "s1", CustomerName: "C", BikeModel: "M",
		Items:    []sales.LineItem{},
		Subtotal: ledger.Money(100), Total: ledger.Money(100),
		Date: ledger.NewDate(2024, time.June, 3), CreatedAt: testTime,
		Status: sales.StatusPaid,
	}))
	require.NoError(t, store.SaveJob(ctx, workshop.Job{
		ID: "w1", CustomerName: "C", BikeModel: "M", ServiceType: "S",
		ServicePrice: ledger.Money(50), Mechanic: "T",
		Status: workshop.StatusQueued, StartTime: testTime,
		Date: ledger.NewDate(2024, time.June, 3),
	}))

	report, err := store.DrainShift(ctx, ledger.NewDate(2024, time.June, 3),
		func(openSales []sales.Sale, openJobs []workshop.Job) closing.DailyReport {
			require.Len(t, openSales, 1, "the snapshot carries the open sale")
			require.Len(t, openJobs, 1, "the snapshot carries the open job")
			return closing.DailyReport{
				ID:            "r1",
				Date:          ledger.NewDate(2024, time.June, 3),
				ClosedAt:      testTime,
				Trigger:       closing.TriggerManual,
				TotalSales:    openSales[0].Total,
				TotalWorkshop: ledger.Money(0),
				GrossRevenue:  openSales[0].Total,
				SalesCount:    len(openSales),
			}
		})
	require.NoError(t, err)
	assert.Equal(t, "r1", report.ID)

	openSales, _ := store.ListSales(ctx)
	assert.Empty(t, openSales)
	openJobs, _ := store.ListJobs(ctx)
	assert.Empty(t, openJobs)

	reports, err := store.ListReports(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "r1", reports[0].ID)
	assert.Equal(t, closing.TriggerManual, reports[0].Trigger)
	assert.True(t, reports[0].GrossRevenue.Equal(ledger.Money(100)))

	marker, err := store.LastClosedDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-03", marker.String())
}

func TestLastClosedDate_ZeroBeforeFirstClose(t *testing.T) {
	store := newTestStore(t)

	marker, err := store.LastClosedDate(context.Background())
	require.NoError(t, err)
	assert.True(t, marker.IsZero())
}

func TestDrainShift_MarkerOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	report := closing.DailyReport{
		ID: "r1", Date: ledger.NewDate(2024, time.June, 3), ClosedAt: testTime,
		Trigger: closing.TriggerManual,
		TotalSales: ledger.Money(0), TotalWorkshop: ledger.Money(0), GrossRevenue: ledger.Money(0),
	}
	_, err := store.DrainShift(ctx, ledger.NewDate(2024, time.June, 3),
		func([]sales.Sale, []workshop.Job) closing.DailyReport { return report })
	require.NoError(t, err)

	report.ID = "r2"
	report.Date = ledger.NewDate(2024, time.June, 4)
	_, err = store.DrainShift(ctx, ledger.NewDate(2024, time.June, 4),
		func([]sales.Sale, []workshop.Job) closing.DailyReport { return report })
	require.NoError(t, err)

	marker, err := store.LastClosedDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-04", marker.String(), "single-row marker, latest date wins")

	reports, _ := store.ListReports(ctx)
	assert.Len(t, reports, 2)
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

func TestNotifications_RoundTripAndMarkRead(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveNotification(ctx, notify.Notification{
		ID: "n1", Type: notify.TypeLowStock, Title: "Low Stock Alert",
		Message: "Drive Chain Kit is low", Priority: notify.PriorityMedium,
		CreatedAt: testTime,
	}))
	require.NoError(t, store.SaveNotification(ctx, notify.Notification{
		ID: "n2", Type: notify.TypeSystem, Title: "System Online",
		Message: "ready", Priority: notify.PriorityLow,
		CreatedAt: testTime.Add(time.Minute),
	}))

	ns, err := store.ListNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, ns, 2)
	assert.Equal(t, "n2", ns[0].ID, "newest first")
	assert.False(t, ns[0].Read)
	assert.Equal(t, notify.TypeLowStock, ns[1].Type)
	assert.Equal(t, notify.PriorityMedium, ns[1].Priority)

	require.NoError(t, store.MarkAllNotificationsRead(ctx))
	ns, _ = store.ListNotifications(ctx)
	assert.True(t, ns[0].Read)
	assert.True(t, ns[1].Read)

	require.NoError(t, store.DeleteNotification(ctx, "n1"))
	ns, _ = store.ListNotifications(ctx)
	assert.Len(t, ns, 1)
}

// =============================================================================
// STAFF
// =============================================================================

func TestAccounts_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := staff.Account{
		ID: "S1", Name: "Zeeshan Ali", Email: "zeeshan@atlashonda.com",
		Username: "zeeshan123", Role: staff.RoleUser, CreatedAt: testTime,
	}
	require.NoError(t, store.SaveAccount(ctx, want))

	got, err := store.GetAccount(ctx, "S1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Role, got.Role)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, store.DeleteAccount(ctx, "S1"))
	all, _ := store.ListAccounts(ctx)
	assert.Empty(t, all)
}

func TestTechnicians_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := staff.Technician{
		ID: "T1", Name: "Carlos Sainz", Specialization: "Master Mechanic",
		Status: staff.TechActive, JoinedDate: ledger.NewDate(2023, time.January, 15),
	}
	require.NoError(t, store.SaveTechnician(ctx, want))

	techs, err := store.ListTechnicians(ctx)
	require.NoError(t, err)
	require.Len(t, techs, 1)
	assert.Equal(t, "Carlos Sainz", techs[0].Name)
	assert.Equal(t, staff.TechActive, techs[0].Status)
	assert.Equal(t, "2023-01-15", techs[0].JoinedDate.String())
}

// =============================================================================
// RESET
// =============================================================================

func TestReset_WipesEverything(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SavePart(ctx, testPart()))
	require.NoError(t, store.SaveNotification(ctx, notify.Notification{
		ID: "n1", Type: notify.TypeSystem, Title: "t", Message: "m",
		Priority: notify.PriorityLow, CreatedAt: testTime,
	}))

	require.NoError(t, store.Reset(ctx))

	parts, _ := store.ListParts(ctx)
	assert.Empty(t, parts)
	ns, _ := store.ListNotifications(ctx)
	assert.Empty(t, ns)
	marker, _ := store.LastClosedDate(ctx)
	assert.True(t, marker.IsZero())
}
