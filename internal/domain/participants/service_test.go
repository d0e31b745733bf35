package participants

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	issued []Participants
	err    error
	calls  int
}

func (d *fakeDirectory) Issue(ctx context.Context) (Participants, error) {
	if d.err != nil {
		return Participants{}, d.err
	}
	p := d.issued[d.calls%len(d.issued)]
	d.calls++
	return p, nil
}

var (
	setA = Participants{Laboratory: "lab-a", Logistics: "log-a", Pharmacy: "pha-a"}
	setB = Participants{Laboratory: "lab-b", Logistics: "log-b", Pharmacy: "pha-b"}
)

func TestService_Current_BeforeIssue(t *testing.T) {
	svc := NewService(&fakeDirectory{issued: []Participants{setA}}, nil)

	_, _, err := svc.Current()
	assert.ErrorIs(t, err, ErrNotIssued)
}

func TestService_Issue_OverwritesWorkingSet(t *testing.T) {
	svc := NewService(&fakeDirectory{issued: []Participants{setA, setB}}, nil)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	p, at, err := svc.Issue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, setA, p)
	assert.Equal(t, now, at)

	_, _, err = svc.Issue(context.Background())
	require.NoError(t, err)

	cur, _, err := svc.Current()
	require.NoError(t, err)
	assert.Equal(t, setB, cur)
	assert.Equal(t, "lab-b", string(cur.Custodians().Laboratory))
}

func TestService_Issue_RejectsIncompleteOrDuplicated(t *testing.T) {
	cases := map[string]Participants{
		"missing pharmacy": {Laboratory: "a", Logistics: "b"},
		"duplicated ids":   {Laboratory: "a", Logistics: "a", Pharmacy: "c"},
		"blank id":         {Laboratory: "a", Logistics: "  ", Pharmacy: "c"},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			svc := NewService(&fakeDirectory{issued: []Participants{p}}, nil)
			_, _, err := svc.Issue(context.Background())
			assert.ErrorIs(t, err, ErrInvalidIssuance)

			_, _, err = svc.Current()
			assert.ErrorIs(t, err, ErrNotIssued)
		})
	}
}

func TestService_Issue_PropagatesDirectoryError(t *testing.T) {
	boom := errors.New("registry down")
	svc := NewService(&fakeDirectory{err: boom}, nil)

	_, _, err := svc.Issue(context.Background())
	assert.ErrorIs(t, err, boom)
}
