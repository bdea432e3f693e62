package origination

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldloan-origination/internal/domain/downstream"
	"goldloan-origination/internal/domain/draft"
	"goldloan-origination/internal/testutil/draftmock"
	"goldloan-origination/internal/testutil/downstreammock"
	"goldloan-origination/internal/usecase/verification"
)

func detailsDraft() *draft.Draft {
	return &draft.Draft{
		DraftID:            "d1",
		Step:               draft.StepLoanDetails,
		NationalID:         "123456789012",
		Name:               "Asha",
		PrimaryMobile:      "9876543210",
		EmergencyMobile:    "9000000000",
		EmergencyRelation:  "spouse",
		PresentAddress:     "12 Main St",
		PermanentAddress:   "12 Main St",
		VerifiedCustomerID: "abc",
		Items: []draft.GoldItem{
			{Position: 0, Description: "bangle", GrossWeight: 20, NetWeight: 18.5},
		},
		InterestRatePercent: 18,
		PrincipalAmount:     100000,
		TermMonths:          12,
		MonthlyPayment:      9833.33,
		TotalPayable:        118000,
	}
}

func repoFor(d *draft.Draft) *draftmock.Repo {
	return &draftmock.Repo{
		GetByDraftIDFn: func(ctx context.Context, draftID string) (*draft.Draft, error) {
			if draftID != d.DraftID {
				return nil, draft.ErrNotFound
			}
			return d, nil
		},
	}
}

func newUsecase(repo *draftmock.Repo, loans *downstreammock.LoanAPI, photos *downstreammock.PhotoStore, customers *downstreammock.CustomerAPI) *Usecase {
	if loans == nil {
		loans = &downstreammock.LoanAPI{}
	}
	if photos == nil {
		photos = &downstreammock.PhotoStore{}
	}
	if customers == nil {
		customers = &downstreammock.CustomerAPI{}
	}
	verifier := verification.NewUsecase(repo, customers, zerolog.Nop())
	return NewUsecase(repo, loans, photos, &downstreammock.Renderer{}, verifier, Limits{}, zerolog.Nop())
}

func TestStart_SeedsOneBlankItem(t *testing.T) {
	var created *draft.Draft
	repo := &draftmock.Repo{
		CreateFn: func(ctx context.Context, d *draft.Draft) error {
			created = d
			return nil
		},
	}
	uc := newUsecase(repo, nil, nil, nil)

	d, err := uc.Start(context.Background())
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Len(t, d.Items, 1)
	assert.Equal(t, draft.StepCustomerInfo, d.Step)
	assert.Len(t, d.DraftID, 32)
}

func TestRemoveItem_LastItemRefused(t *testing.T) {
	d := detailsDraft()
	removed := false
	repo := repoFor(d)
	repo.RemoveItemFn = func(ctx context.Context, d *draft.Draft, position int) error {
		removed = true
		return nil
	}
	uc := newUsecase(repo, nil, nil, nil)

	_, err := uc.RemoveItem(context.Background(), "d1", 0)
	assert.ErrorIs(t, err, draft.ErrLastItem)
	assert.False(t, removed)
}

func TestRemoveItem_DelegatesRenumbering(t *testing.T) {
	d := detailsDraft()
	d.Items = append(d.Items, draft.GoldItem{Position: 1, Description: "chain", GrossWeight: 10, NetWeight: 9})
	var gotPos int
	repo := repoFor(d)
	repo.RemoveItemFn = func(ctx context.Context, dd *draft.Draft, position int) error {
		gotPos = position
		return nil
	}
	uc := newUsecase(repo, nil, nil, nil)

	_, err := uc.RemoveItem(context.Background(), "d1", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, gotPos)
}

func TestStagePhotos_FiltersNonImagesAndDropsExcess(t *testing.T) {
	d := detailsDraft()
	uc := newUsecase(repoFor(d), nil, nil, nil)

	files := []downstream.UploadFile{
		{Name: "a.jpg", ContentType: "image/jpeg", Content: []byte("a")},
		{Name: "b.pdf", ContentType: "application/pdf", Content: []byte("b")},
		{Name: "c.png", ContentType: "image/png", Content: []byte("c")},
		{Name: "d.png", ContentType: "image/png", Content: []byte("d")},
		{Name: "e.png", ContentType: "image/png", Content: []byte("e")},
	}
	// four valid images against a capacity of three
	got, rep, err := uc.StagePhotos(context.Background(), "d1", draft.ItemGroup(0), files)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Staged)
	assert.Equal(t, 1, rep.Dropped)
	assert.Len(t, got.PhotosInGroup(draft.ItemGroup(0)), 3)
	for _, p := range got.Photos {
		assert.False(t, p.Uploaded, "staged photos carry the ready marker, not uploaded")
		assert.NotEmpty(t, p.Handle)
	}
}

func TestStagePhotos_ZeroValidImagesRejected(t *testing.T) {
	d := detailsDraft()
	uc := newUsecase(repoFor(d), nil, nil, nil)

	_, _, err := uc.StagePhotos(context.Background(), "d1", draft.ItemGroup(0), []downstream.UploadFile{
		{Name: "b.pdf", ContentType: "application/pdf"},
	})
	assert.ErrorIs(t, err, draft.ErrNoImageFiles)
}

func TestStagePhotos_FullCapacitySilentlyDrops(t *testing.T) {
	d := detailsDraft()
	for i := 0; i < 3; i++ {
		d.Photos = append(d.Photos, draft.StagedPhoto{GroupIndex: 0, FileName: "x.jpg", ContentType: "image/jpeg"})
	}
	uc := newUsecase(repoFor(d), nil, nil, nil)

	_, rep, err := uc.StagePhotos(context.Background(), "d1", draft.ItemGroup(0), []downstream.UploadFile{
		{Name: "a.jpg", ContentType: "image/jpeg"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Staged)
	assert.Equal(t, 1, rep.Dropped)
}

func TestStagePhotos_AllItemsGroupNeedsMultipleItems(t *testing.T) {
	d := detailsDraft()
	uc := newUsecase(repoFor(d), nil, nil, nil)

	_, _, err := uc.StagePhotos(context.Background(), "d1", draft.AllItemsGroup(), []downstream.UploadFile{
		{Name: "a.jpg", ContentType: "image/jpeg"},
	})
	var ve *draft.ValidationError
	assert.True(t, errors.As(err, &ve))

	d.Items = append(d.Items, draft.GoldItem{Position: 1})
	got, rep, err := uc.StagePhotos(context.Background(), "d1", draft.AllItemsGroup(), []downstream.UploadFile{
		{Name: "a.jpg", ContentType: "image/jpeg"},
		{Name: "b.jpg", ContentType: "image/jpeg"},
	})
	require.NoError(t, err)
	// the all-items slot holds a single photo
	assert.Equal(t, 1, rep.Staged)
	assert.Equal(t, 1, rep.Dropped)
	assert.Len(t, got.PhotosInGroup(draft.AllItemsGroup()), 1)
}

func TestUpdateCustomer_DuplicateMobilesKeptButReported(t *testing.T) {
	d := detailsDraft()
	d.Step = draft.StepCustomerInfo
	uc := newUsecase(repoFor(d), nil, nil, nil)

	in := CustomerUpdate{
		NationalID:    d.NationalID,
		Name:          d.Name,
		PrimaryMobile: "9876543210", SecondaryMobile: "9876543210",
		EmergencyMobile: "9000000000", EmergencyRelation: "spouse",
		PresentAddress: d.PresentAddress, PermanentAddress: d.PermanentAddress,
	}
	got, err := uc.UpdateCustomer(context.Background(), "d1", in)
	var dup *draft.DuplicateContactError
	assert.True(t, errors.As(err, &dup))
	require.NotNil(t, got)
	assert.Equal(t, "9876543210", got.SecondaryMobile, "typed values stay in the draft")
}

func TestUpdateCustomer_FullNationalIDTriggersLookup(t *testing.T) {
	d := detailsDraft()
	d.Step = draft.StepCustomerInfo
	d.NationalID = "12345678901" // one digit short
	lookups := 0
	customers := &downstreammock.CustomerAPI{
		CheckNationalIDFn: func(ctx context.Context, nationalID string) (downstream.LookupResult, error) {
			lookups++
			return downstream.LookupResult{Exists: true, Profile: &downstream.CustomerProfile{
				Name: "Known Customer", PrimaryMobile: "9111111111",
			}}, nil
		},
	}
	uc := newUsecase(repoFor(d), nil, nil, customers)

	in := CustomerUpdate{
		NationalID: "123456789012", Name: "Asha",
		PrimaryMobile: "9876543210", EmergencyMobile: "9000000000",
		EmergencyRelation: "spouse", PresentAddress: "12 Main St", PermanentAddress: "12 Main St",
	}
	got, err := uc.UpdateCustomer(context.Background(), "d1", in)
	require.NoError(t, err)
	assert.Equal(t, 1, lookups)
	assert.Equal(t, "Known Customer", got.Name, "found profile overwrites editable fields")

	// same full ID again: no re-trigger
	in.Name = got.Name
	in.PrimaryMobile = got.PrimaryMobile
	_, _ = uc.UpdateCustomer(context.Background(), "d1", in)
	assert.Equal(t, 1, lookups)
}
