package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jobpay/jobpay-backend/internal/jobs"
	"github.com/jobpay/jobpay-backend/pkg/db/dbtest"
	"github.com/jobpay/jobpay-backend/pkg/db/models"
	"github.com/jobpay/jobpay-backend/pkg/enums"
	pkgerrors "github.com/jobpay/jobpay-backend/pkg/errors"
)

type stubReader struct {
	jobs   []models.Job
	err    error
	window jobs.Window
}

func (s *stubReader) ListPaidInWindow(ctx context.Context, window jobs.Window) ([]models.Job, error) {
	s.window = window
	return s.jobs, s.err
}

func paidJob(client, contractor *models.Profile, price string) models.Job {
	return models.Job{
		ID:    uuid.New(),
		Price: dbtest.Money(price),
		Contract: &models.Contract{
			ClientID:     client.ID,
			ContractorID: contractor.ID,
			Client:       client,
			Contractor:   contractor,
		},
	}
}

func newStubService(t *testing.T, reader *stubReader) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Jobs: reader, DefaultClientLimit: 2, MaxClientLimit: 10})
	require.NoError(t, err)
	return svc
}

func TestBestProfession(t *testing.T) {
	harry := &models.Profile{ID: uuid.New(), FirstName: "Harry", LastName: "Potter"}
	programmer := &models.Profile{ID: uuid.New(), Profession: "Programmer"}
	musician := &models.Profile{ID: uuid.New(), Profession: "Musician"}

	reader := &stubReader{jobs: []models.Job{
		paidJob(harry, programmer, "200"),
		paidJob(harry, programmer, "2020"),
		paidJob(harry, musician, "21"),
	}}
	got, err := newStubService(t, reader).BestProfession(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, "Programmer", got.Profession)
	require.Equal(t, "2220.00", got.Paid.StringFixed(2))
}

func TestBestProfession_TieBreaksAlphabetically(t *testing.T) {
	client := &models.Profile{ID: uuid.New()}
	zoo := &models.Profile{ID: uuid.New(), Profession: "Zookeeper"}
	art := &models.Profile{ID: uuid.New(), Profession: "Artist"}

	reader := &stubReader{jobs: []models.Job{paidJob(client, zoo, "50"), paidJob(client, art, "50")}}
	got, err := newStubService(t, reader).BestProfession(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, "Artist", got.Profession)
}

func TestReportsReturnNilWhenNothingPaid(t *testing.T) {
	svc := newStubService(t, &stubReader{})

	profession, err := svc.BestProfession(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Nil(t, profession)

	clients, err := svc.BestClients(context.Background(), nil, nil, 0)
	require.NoError(t, err)
	require.Nil(t, clients)
}

func TestBestClients_SortedAndLimited(t *testing.T) {
	contractor := &models.Profile{ID: uuid.New(), Profession: "Programmer"}
	ash := &models.Profile{ID: uuid.New(), FirstName: "Ash", LastName: "Kethcum"}
	mr := &models.Profile{ID: uuid.New(), FirstName: "Mr", LastName: "Robot"}
	harry := &models.Profile{ID: uuid.New(), FirstName: "Harry", LastName: "Potter"}

	reader := &stubReader{jobs: []models.Job{
		paidJob(ash, contractor, "2020"),
		paidJob(mr, contractor, "200"),
		paidJob(mr, contractor, "242"),
		paidJob(harry, contractor, "21"),
		paidJob(harry, contractor, "100"),
	}}
	svc := newStubService(t, reader)

	got, err := svc.BestClients(context.Background(), nil, nil, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Ash Kethcum", got[0].FullName)
	require.Equal(t, "2020.00", got[0].Paid.StringFixed(2))
	require.Equal(t, mr.ID, got[1].ID)
	require.Equal(t, "442.00", got[1].Paid.StringFixed(2))

	all, err := svc.BestClients(context.Background(), nil, nil, 5)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		require.True(t, all[i-1].Paid.GreaterThanOrEqual(all[i].Paid))
	}
}

func TestBestClients_TieBreaksByName(t *testing.T) {
	contractor := &models.Profile{ID: uuid.New()}
	zed := &models.Profile{ID: uuid.New(), FirstName: "Zed", LastName: "Z"}
	amy := &models.Profile{ID: uuid.New(), FirstName: "Amy", LastName: "A"}

	reader := &stubReader{jobs: []models.Job{paidJob(zed, contractor, "10"), paidJob(amy, contractor, "10")}}
	got, err := newStubService(t, reader).BestClients(context.Background(), nil, nil, 1)
	require.NoError(t, err)
	require.Equal(t, amy.ID, got[0].ID)
}

func TestBestClients_RejectsBadLimit(t *testing.T) {
	svc := newStubService(t, &stubReader{})
	for _, limit := range []int{-1, 11} {
		_, err := svc.BestClients(context.Background(), nil, nil, limit)
		require.True(t, pkgerrors.HasReason(err, ReasonInvalidLimit), "limit %d", limit)
	}
}

func TestWindowNormalizesToWholeDays(t *testing.T) {
	reader := &stubReader{}
	svc := newStubService(t, reader)

	start := time.Date(2020, 8, 10, 15, 4, 5, 0, time.UTC)
	end := time.Date(2020, 8, 15, 1, 0, 0, 0, time.UTC)
	_, err := svc.BestProfession(context.Background(), &start, &end)
	require.NoError(t, err)

	require.Equal(t, time.Date(2020, 8, 10, 0, 0, 0, 0, time.UTC), *reader.window.From)
	require.Equal(t, time.Date(2020, 8, 15, 23, 59, 59, 999999999, time.UTC), *reader.window.To)

	_, err = svc.BestProfession(context.Background(), &start, nil)
	require.NoError(t, err)
	require.Nil(t, reader.window.To)

	sameDay := time.Date(2020, 8, 10, 1, 0, 0, 0, time.UTC)
	_, err = svc.BestProfession(context.Background(), &start, &sameDay)
	require.NoError(t, err, "a single day window is valid regardless of the time of day")

	_, err = svc.BestProfession(context.Background(), &end, &start)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	require.True(t, pkgerrors.HasReason(err, ReasonInvalidRange))
}

func TestStoreFailureIsWrapped(t *testing.T) {
	svc := newStubService(t, &stubReader{err: errors.New("connection refused")})
	_, err := svc.BestClients(context.Background(), nil, nil, 0)
	require.Error(t, err)
	require.NotNil(t, pkgerrors.As(err))
}

func TestReportsAgainstStore(t *testing.T) {
	conn := dbtest.Open(t)
	client := dbtest.SeedProfile(t, conn, models.Profile{FirstName: "Harry", LastName: "Potter", Role: enums.ProfileRoleClient})
	other := dbtest.SeedProfile(t, conn, models.Profile{FirstName: "Mr", LastName: "Robot", Role: enums.ProfileRoleClient})
	programmer := dbtest.SeedProfile(t, conn, models.Profile{Profession: "Programmer", Role: enums.ProfileRoleContractor})
	musician := dbtest.SeedProfile(t, conn, models.Profile{Profession: "Musician", Role: enums.ProfileRoleContractor})

	c1 := dbtest.SeedContract(t, conn, models.Contract{ClientID: client.ID, ContractorID: programmer.ID})
	c2 := dbtest.SeedContract(t, conn, models.Contract{ClientID: other.ID, ContractorID: musician.ID, Status: enums.ContractStatusTerminated})

	inWindow := time.Date(2020, 8, 15, 19, 11, 26, 0, time.UTC)
	outside := time.Date(2020, 9, 1, 9, 0, 0, 0, time.UTC)
	dbtest.SeedJob(t, conn, models.Job{ContractID: c1.ID, Price: dbtest.Money("200"), Paid: dbtest.Bool(true), PaymentDate: &inWindow})
	dbtest.SeedJob(t, conn, models.Job{ContractID: c2.ID, Price: dbtest.Money("150"), Paid: dbtest.Bool(true), PaymentDate: &inWindow})
	dbtest.SeedJob(t, conn, models.Job{ContractID: c2.ID, Price: dbtest.Money("900"), Paid: dbtest.Bool(true), PaymentDate: &outside})
	dbtest.SeedJob(t, conn, models.Job{ContractID: c1.ID, Price: dbtest.Money("5000")})

	svc, err := NewService(ServiceParams{Jobs: jobs.NewRepository(conn)})
	require.NoError(t, err)

	start := time.Date(2020, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, 8, 15, 0, 0, 0, 0, time.UTC)

	profession, err := svc.BestProfession(context.Background(), &start, &end)
	require.NoError(t, err)
	require.Equal(t, "Programmer", profession.Profession)

	clients, err := svc.BestClients(context.Background(), &start, &end, 0)
	require.NoError(t, err)
	require.Len(t, clients, 2)
	require.Equal(t, client.ID, clients[0].ID)
	require.Equal(t, "Harry Potter", clients[0].FullName)

	allTime, err := svc.BestProfession(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, "Musician", allTime.Profession)
	require.Equal(t, "1050.00", allTime.Paid.StringFixed(2))

	empty := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	none, err := svc.BestClients(context.Background(), &empty, nil, 0)
	require.NoError(t, err)
	require.Nil(t, none)
}
