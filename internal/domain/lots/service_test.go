package lots_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	eventsmem "cold-chain-ledger/internal/adapters/events/memory"
	"cold-chain-ledger/internal/adapters/storage/memory"
	"cold-chain-ledger/internal/domain/lots"
	"cold-chain-ledger/internal/domain/lots/mocks"
	"cold-chain-ledger/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/sync/errgroup"
)

var custodians = lots.Custodians{Laboratory: "lab-1", Logistics: "log-1", Pharmacy: "pha-1"}

// stepClock avanza un segundo por llamada.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type fixture struct {
	svc *lots.Service
	rec *eventsmem.Recorder
	m   *metrics.Metrics
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	clock := &stepClock{t: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)}
	rec := eventsmem.NewRecorder()
	m := metrics.New(prometheus.NewRegistry())
	svc := lots.NewService(memory.NewLotRepo(),
		lots.WithPublisher(rec),
		lots.WithMetrics(m),
		lots.WithClock(clock.now),
	)
	return fixture{svc: svc, rec: rec, m: m}
}

func (f fixture) create(t *testing.T, id string, lo, hi float64) lots.Lot {
	t.Helper()
	l, err := f.svc.CreateLot(context.Background(), lots.CreateInput{ID: id, TempMin: lo, TempMax: hi, Custodians: custodians})
	require.NoError(t, err)
	return l
}

func (f fixture) record(t *testing.T, id string, v float64, role lots.Role) lots.Lot {
	t.Helper()
	l, err := f.svc.RecordTemperature(context.Background(), id, lots.RecordInput{Value: v, RecordedBy: role})
	require.NoError(t, err)
	return l
}

func TestLedger_VaccineLotLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// 1. creación
	l := f.create(t, "VAC-1", -8, 2)
	assert.Equal(t, lots.StatusActive, l.Status)
	assert.False(t, l.Breached)
	assert.Empty(t, l.History)
	assert.Equal(t, custodians, l.Custodians)

	// 2. lectura en rango
	l = f.record(t, "VAC-1", -3, lots.RoleLaboratory)
	require.Len(t, l.History, 1)
	assert.False(t, l.History[0].OutOfRange)
	assert.Equal(t, lots.ParticipantID("lab-1"), l.History[0].Custodian)
	assert.Equal(t, lots.StatusActive, l.Status)

	// 3. lectura fuera de rango
	l = f.record(t, "VAC-1", 5, lots.RoleLogistics)
	require.Len(t, l.History, 2)
	assert.True(t, l.History[1].OutOfRange)
	assert.Equal(t, lots.ParticipantID("log-1"), l.History[1].Custodian)
	assert.True(t, l.Breached)
	assert.Equal(t, lots.StatusCompromised, l.Status)

	// 4. entrega idempotente
	l, err := f.svc.MarkDelivered(ctx, "VAC-1")
	require.NoError(t, err)
	assert.Equal(t, lots.StatusDelivered, l.Status)
	require.NotNil(t, l.DeliveredAt)
	first := *l.DeliveredAt

	l, err = f.svc.MarkDelivered(ctx, "VAC-1")
	require.NoError(t, err)
	assert.Equal(t, lots.StatusDelivered, l.Status)
	assert.True(t, l.Breached)
	assert.Len(t, l.History, 2)
	assert.True(t, first.Equal(*l.DeliveredAt))

	// 5. id duplicado
	_, err = f.svc.CreateLot(ctx, lots.CreateInput{ID: "VAC-1", TempMin: 0, TempMax: 5, Custodians: custodians})
	var verr *lots.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "id", verr.Field)

	// 6. lote inexistente, rol en español
	_, err = f.svc.RecordTemperature(ctx, "VAC-99", lots.RecordInput{Value: 1, RecordedBy: "Farmacia"})
	var nf *lots.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "VAC-99", nf.LotID)
	assert.ErrorIs(t, err, lots.ErrNotFound)
}

func TestCreateLot_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cases := []struct {
		name  string
		in    lots.CreateInput
		field string
	}{
		{"empty id", lots.CreateInput{ID: "  ", TempMin: 0, TempMax: 1, Custodians: custodians}, "id"},
		{"inverted bounds", lots.CreateInput{ID: "A", TempMin: 3, TempMax: 1, Custodians: custodians}, "temp_range"},
		{"nan bound", lots.CreateInput{ID: "A", TempMin: math.NaN(), TempMax: 1, Custodians: custodians}, "temp_range"},
		{"inf bound", lots.CreateInput{ID: "A", TempMin: 0, TempMax: math.Inf(1), Custodians: custodians}, "temp_range"},
		{"missing pharmacy", lots.CreateInput{ID: "A", TempMin: 0, TempMax: 1, Custodians: lots.Custodians{Laboratory: "l", Logistics: "g"}}, "custodians"},
		{"blank laboratory", lots.CreateInput{ID: "A", TempMin: 0, TempMax: 1, Custodians: lots.Custodians{Laboratory: " ", Logistics: "g", Pharmacy: "p"}}, "custodians"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateLot(ctx, tc.in)
			var verr *lots.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.ErrorIs(t, err, lots.ErrValidation)
		})
	}

	items, err := f.svc.ListLots(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Empty(t, f.rec.Events())
}

func TestCreateLot_EqualBoundsAndTrimmedID(t *testing.T) {
	f := newFixture(t)
	l := f.create(t, "  VAC-7 ", 4, 4)
	assert.Equal(t, "VAC-7", l.ID)

	l = f.record(t, " VAC-7", 4, lots.RolePharmacy)
	assert.False(t, l.History[0].OutOfRange)
	assert.False(t, l.Breached)
}

func TestRecordTemperature_BoundariesAreInRange(t *testing.T) {
	f := newFixture(t)
	f.create(t, "VAC-1", -8, 2)

	cases := []struct {
		v   float64
		out bool
	}{
		{-8, false}, {2, false}, {0, false},
		{-8.0001, true}, {2.0001, true},
	}
	for i, tc := range cases {
		l := f.record(t, "VAC-1", tc.v, lots.RoleLogistics)
		assert.Equal(t, tc.out, l.History[i].OutOfRange, "value %v", tc.v)
		assert.Equal(t, tc.out, lots.OutOfRange(tc.v, -8, 2))
	}
}

func TestRecordTemperature_RejectsBadInputWithoutMutation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.create(t, "VAC-1", -8, 2)

	_, err := f.svc.RecordTemperature(ctx, "VAC-1", lots.RecordInput{Value: 1, RecordedBy: "courier"})
	assert.ErrorIs(t, err, lots.ErrValidation)

	_, err = f.svc.RecordTemperature(ctx, "VAC-1", lots.RecordInput{Value: math.NaN(), RecordedBy: lots.RoleLaboratory})
	assert.ErrorIs(t, err, lots.ErrValidation)

	l, err := f.svc.GetLot(ctx, "VAC-1")
	require.NoError(t, err)
	assert.Empty(t, l.History)
	assert.Len(t, f.rec.Events(), 1)
}

func TestRecordTemperature_UnknownLotWinsOverBadInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cases := []lots.RecordInput{
		{Value: 1, RecordedBy: "courier"},
		{Value: math.Inf(1), RecordedBy: lots.RolePharmacy},
		{Value: math.NaN(), RecordedBy: ""},
	}
	for _, in := range cases {
		_, err := f.svc.RecordTemperature(ctx, "VAC-404", in)
		assert.ErrorIs(t, err, lots.ErrNotFound)
		assert.NotErrorIs(t, err, lots.ErrValidation)

		var nf *lots.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "VAC-404", nf.LotID)
	}

	f.create(t, "VAC-1", -8, 2)
	_, err := f.svc.RecordTemperature(ctx, "VAC-1", lots.RecordInput{Value: 1, RecordedBy: "courier"})
	var ve *lots.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "recorded_by", ve.Field)
	assert.Empty(t, f.rec.ByLot("VAC-404", ""))
}

func TestBreach_IsMonotonicAndHistoryAppendOnly(t *testing.T) {
	f := newFixture(t)
	f.create(t, "VAC-1", -8, 2)

	prev := []lots.TemperatureRecord{}
	values := []float64{0, 9, -3, -2, 15, 1}
	breached := false
	for i, v := range values {
		l := f.record(t, "VAC-1", v, lots.Roles[i%len(lots.Roles)])

		require.Len(t, l.History, len(prev)+1)
		assert.Equal(t, prev, l.History[:len(prev)])
		prev = l.History

		breached = breached || lots.OutOfRange(v, -8, 2)
		assert.Equal(t, breached, l.Breached)
		if breached {
			assert.Equal(t, lots.StatusCompromised, l.Status)
		} else {
			assert.Equal(t, lots.StatusActive, l.Status)
		}
	}
}

func TestRecordTemperature_AfterDeliveryKeepsStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.create(t, "VAC-1", -8, 2)
	f.record(t, "VAC-1", 0, lots.RoleLaboratory)

	_, err := f.svc.MarkDelivered(ctx, "VAC-1")
	require.NoError(t, err)

	l := f.record(t, "VAC-1", 12, lots.RolePharmacy)
	assert.Equal(t, lots.StatusDelivered, l.Status)
	assert.True(t, l.Breached)
	require.Len(t, l.History, 2)
	assert.True(t, l.History[1].OutOfRange)

	// nunca pasó por compromised
	for _, e := range f.rec.ByLot("VAC-1", lots.EventColdChainBreached) {
		assert.Equal(t, lots.StatusDelivered, e.Status)
	}
}

func TestMarkDelivered_FromActiveAndNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.create(t, "VAC-1", -8, 2)

	l, err := f.svc.MarkDelivered(ctx, "VAC-1")
	require.NoError(t, err)
	assert.Equal(t, lots.StatusDelivered, l.Status)
	assert.False(t, l.Breached)

	_, err = f.svc.MarkDelivered(ctx, "VAC-404")
	assert.ErrorIs(t, err, lots.ErrNotFound)

	_, err = f.svc.GetLot(ctx, "VAC-404")
	assert.ErrorIs(t, err, lots.ErrNotFound)
}

func TestCreateLot_DuplicateRejectedInEveryState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.create(t, "ACTIVE", -8, 2)
	f.create(t, "BROKEN", -8, 2)
	f.record(t, "BROKEN", 30, lots.RoleLogistics)
	f.create(t, "DONE", -8, 2)
	_, err := f.svc.MarkDelivered(ctx, "DONE")
	require.NoError(t, err)

	for _, id := range []string{"ACTIVE", "BROKEN", "DONE"} {
		before, err := f.svc.GetLot(ctx, id)
		require.NoError(t, err)

		_, err = f.svc.CreateLot(ctx, lots.CreateInput{ID: id, TempMin: 0, TempMax: 5, Custodians: custodians})
		assert.ErrorIs(t, err, lots.ErrValidation, id)

		after, err := f.svc.GetLot(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, before, after, id)
	}
}

func TestListLots_CreationOrderAndNoAliasing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, id := range []string{"VAC-3", "VAC-1", "VAC-2"} {
		f.create(t, id, -8, 2)
	}
	f.record(t, "VAC-1", 0, lots.RoleLaboratory)

	items, err := f.svc.ListLots(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "VAC-3", items[0].ID)
	assert.Equal(t, "VAC-1", items[1].ID)
	assert.Equal(t, "VAC-2", items[2].ID)

	items[1].History[0].Value = 99
	l, err := f.svc.GetLot(ctx, "VAC-1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, l.History[0].Value)
}

func TestEvents_PublishedAfterCommit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.create(t, "VAC-1", -8, 2)
	f.record(t, "VAC-1", 0, lots.RoleLaboratory)
	f.record(t, "VAC-1", 5, lots.RoleLogistics)
	f.record(t, "VAC-1", 6, lots.RoleLogistics)
	_, err := f.svc.MarkDelivered(ctx, "VAC-1")
	require.NoError(t, err)
	_, err = f.svc.MarkDelivered(ctx, "VAC-1")
	require.NoError(t, err)

	var types []lots.EventType
	for _, e := range f.rec.Events() {
		types = append(types, e.Type)
	}
	assert.Equal(t, []lots.EventType{
		lots.EventLotCreated,
		lots.EventTemperatureRecorded,
		lots.EventTemperatureRecorded,
		lots.EventColdChainBreached,
		lots.EventTemperatureRecorded,
		lots.EventColdChainBreached,
		lots.EventLotDelivered,
	}, types)

	breaches := f.rec.ByLot("VAC-1", lots.EventColdChainBreached)
	require.Len(t, breaches, 2)
	assert.True(t, breaches[0].FirstBreach)
	assert.False(t, breaches[1].FirstBreach)
	assert.Equal(t, 5.0, breaches[0].Record.Value)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.LotsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.Readings.WithLabelValues("in")))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.m.Readings.WithLabelValues("out")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.Breaches))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.LotsDelivered))
}

func TestEvents_PublishFailureDoesNotRollBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockPublisher(ctrl)
	m := metrics.New(prometheus.NewRegistry())
	svc := lots.NewService(memory.NewLotRepo(), lots.WithPublisher(pub), lots.WithMetrics(m))
	ctx := context.Background()

	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("queue down")).Times(4)

	_, err := svc.CreateLot(ctx, lots.CreateInput{ID: "VAC-1", TempMin: -8, TempMax: 2, Custodians: custodians})
	require.NoError(t, err)
	l, err := svc.RecordTemperature(ctx, "VAC-1", lots.RecordInput{Value: 9, RecordedBy: lots.RoleLogistics})
	require.NoError(t, err)
	assert.True(t, l.Breached)
	_, err = svc.MarkDelivered(ctx, "VAC-1")
	require.NoError(t, err)

	got, err := svc.GetLot(ctx, "VAC-1")
	require.NoError(t, err)
	assert.Equal(t, lots.StatusDelivered, got.Status)
	assert.Len(t, got.History, 1)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.EventPublishFailures))
}

func TestEvents_NoEventsOnFailedOperations(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockPublisher(ctrl)
	svc := lots.NewService(memory.NewLotRepo(), lots.WithPublisher(pub))
	ctx := context.Background()

	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.CreateLot(ctx, lots.CreateInput{ID: "", TempMin: 0, TempMax: 1, Custodians: custodians})
	assert.Error(t, err)
	_, err = svc.RecordTemperature(ctx, "VAC-404", lots.RecordInput{Value: 1, RecordedBy: lots.RoleLaboratory})
	assert.Error(t, err)
	_, err = svc.MarkDelivered(ctx, "VAC-404")
	assert.Error(t, err)
}

func TestRecordTemperature_ConcurrentReadersSeeConsistentLots(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.create(t, "VAC-1", -8, 2)
	f.create(t, "VAC-2", -8, 2)

	const writers, perWriter = 8, 25

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < writers; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < perWriter; i++ {
				v := float64((w*perWriter+i)%12) - 6 // -6..5: algunos fuera de rango
				for _, id := range []string{"VAC-1", "VAC-2"} {
					if _, err := f.svc.RecordTemperature(gctx, id, lots.RecordInput{Value: v, RecordedBy: lots.RoleLogistics}); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		for i := 0; i < 100; i++ {
			l, err := f.svc.GetLot(gctx, "VAC-1")
			if err != nil {
				return err
			}
			if err := consistent(l); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, g.Wait())

	for _, id := range []string{"VAC-1", "VAC-2"} {
		l, err := f.svc.GetLot(ctx, id)
		require.NoError(t, err)
		assert.Len(t, l.History, writers*perWriter)
		assert.NoError(t, consistent(l))
	}
}

// consistent verifica que breached y status correspondan al historial.
func consistent(l lots.Lot) error {
	broken := false
	for _, r := range l.History {
		if r.OutOfRange != lots.OutOfRange(r.Value, l.TempMin, l.TempMax) {
			return fmt.Errorf("record %v has wrong out_of_range", r.Value)
		}
		broken = broken || r.OutOfRange
	}
	if broken != l.Breached {
		return fmt.Errorf("breached=%v but history says %v", l.Breached, broken)
	}
	if broken && l.Status == lots.StatusActive {
		return fmt.Errorf("breached lot still active")
	}
	return nil
}

func TestHistoryAndSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.create(t, "VAC-1", -8, 2)

	s, err := f.svc.Summary(ctx, "VAC-1")
	require.NoError(t, err)
	assert.Zero(t, s.Records)
	assert.Nil(t, s.MinObserved)
	assert.Nil(t, s.LastReading)

	f.record(t, "VAC-1", -5, lots.RoleLaboratory)
	f.record(t, "VAC-1", 9, lots.RoleLogistics)
	f.record(t, "VAC-1", -1, lots.RoleLogistics)
	l := f.record(t, "VAC-1", 4, lots.RolePharmacy)

	h, err := f.svc.History(ctx, "VAC-1", lots.HistoryFilter{})
	require.NoError(t, err)
	assert.Equal(t, l.History, h)

	h, err = f.svc.History(ctx, "VAC-1", lots.HistoryFilter{OutOfRangeOnly: true})
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, 9.0, h[0].Value)
	assert.Equal(t, 4.0, h[1].Value)

	h, err = f.svc.History(ctx, "VAC-1", lots.HistoryFilter{Role: lots.RoleLogistics, Limit: 1})
	require.NoError(t, err)
	require.Len(t, h, 1)
	assert.Equal(t, 9.0, h[0].Value)

	_, err = f.svc.History(ctx, "VAC-404", lots.HistoryFilter{})
	assert.ErrorIs(t, err, lots.ErrNotFound)

	s, err = f.svc.Summary(ctx, "VAC-1")
	require.NoError(t, err)
	assert.Equal(t, "VAC-1", s.LotID)
	assert.Equal(t, lots.StatusCompromised, s.Status)
	assert.True(t, s.Breached)
	assert.Equal(t, 4, s.Records)
	assert.Equal(t, 2, s.OutOfRange)
	require.NotNil(t, s.MinObserved)
	assert.Equal(t, -5.0, *s.MinObserved)
	assert.Equal(t, 9.0, *s.MaxObserved)
	require.NotNil(t, s.LastReading)
	assert.True(t, s.LastReading.Equal(l.History[3].RecordedAt))
	assert.Nil(t, s.DeliveredAt)
}
