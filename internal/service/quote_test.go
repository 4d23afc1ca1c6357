package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpgen/kpgen/internal/catalog"
	"github.com/kpgen/kpgen/internal/domain"
	"github.com/kpgen/kpgen/internal/report"
	"github.com/kpgen/kpgen/internal/storage"
)

// =============================================================================
// Test Fakes
// =============================================================================

type fakeGenerator struct {
	format  report.Format
	payload []byte
	err     error
	called  int
}

func (g *fakeGenerator) Generate(ctx context.Context, offer *domain.OfferContext, w io.Writer) (int64, error) {
	g.called++
	if g.err != nil {
		return 0, g.err
	}
	n, err := w.Write(g.payload)
	return int64(n), err
}

func (g *fakeGenerator) Format() report.Format {
	return g.format
}

type fakeArchive struct {
	keys []string
	err  error
}

func (a *fakeArchive) Put(ctx context.Context, key string, data io.Reader, opts storage.PutOptions) error {
	if a.err != nil {
		return a.err
	}
	a.keys = append(a.keys, key)
	return nil
}

func (a *fakeArchive) Get(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	return nil, storage.ObjectInfo{}, storage.ErrNotFound
}

func (a *fakeArchive) Delete(ctx context.Context, key string) error { return nil }

func (a *fakeArchive) URL(ctx context.Context, key string, expires time.Duration) (string, error) {
	return "", nil
}

func (a *fakeArchive) Exists(ctx context.Context, key string) (bool, error) { return false, nil }

// =============================================================================
// Fixtures
// =============================================================================

func testStore(t *testing.T) *catalog.Store {
	t.Helper()
	store := catalog.NewStore()
	store.Swap(&catalog.Snapshot{
		Prices: catalog.NewPriceCatalog([]domain.PriceRow{
			{Service: "Комплекс", Level: "Эксперт", Period: "окт.25", Accounts: 2, UnitPrice: decimal.RequireFromString("664.03")},
			{Service: "Комплекс", Level: "Базовый", Period: "окт.25", Accounts: 2, UnitPrice: decimal.RequireFromString("51.11")},
		}),
		Promotions: catalog.NewPromotionCatalog(nil),
		LoadedAt:   time.Now(),
	})
	return store
}

func testQuoteService(t *testing.T, store *catalog.Store, gen *fakeGenerator, archive storage.Storage) *quoteService {
	t.Helper()
	svc := NewQuoteService(store, []report.Generator{gen}, archive,
		slog.New(slog.NewTextHandler(io.Discard, nil))).(*quoteService)
	svc.now = func() time.Time { return time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC) }
	return svc
}

func quoteRequest() domain.QuoteRequest {
	return domain.QuoteRequest{
		Service:          "Комплекс",
		Period:           "окт.25",
		Levels:           []domain.LevelRequest{{Level: "Эксперт", Accounts: 2}},
		PrepaymentMonths: 12,
	}
}

// =============================================================================
// Calculate
// =============================================================================

func TestCalculateSuccess(t *testing.T) {
	svc := testQuoteService(t, testStore(t), &fakeGenerator{format: report.FormatDOCX}, nil)

	result, err := svc.Calculate(context.Background(), quoteRequest())
	require.NoError(t, err)
	require.NotNil(t, result.Summary)
	require.NotNil(t, result.Context)
	assert.Nil(t, result.Promotion)

	// 664.03 * 2 = 1328.06, +VAT = 1593.67, * 12 months
	assert.Equal(t, "1593.67", result.Summary.ListMonthly.StringFixed(2))
	assert.Equal(t, "19124.04", result.Summary.ListPeriod.StringFixed(2))
	assert.Equal(t, "Комплекс", result.Context.ServiceName)
	assert.Equal(t, 2, result.Context.TotalAccounts)
}

func TestCalculateValidation(t *testing.T) {
	svc := testQuoteService(t, testStore(t), &fakeGenerator{format: report.FormatDOCX}, nil)

	req := quoteRequest()
	req.Service = ""
	_, err := svc.Calculate(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestCalculateNoMatchingRows(t *testing.T) {
	svc := testQuoteService(t, testStore(t), &fakeGenerator{format: report.FormatDOCX}, nil)

	req := quoteRequest()
	req.Period = "янв.26"
	_, err := svc.Calculate(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestCalculateBeforeFirstLoad(t *testing.T) {
	svc := testQuoteService(t, catalog.NewStore(), &fakeGenerator{format: report.FormatDOCX}, nil)

	_, err := svc.Calculate(context.Background(), quoteRequest())
	require.Error(t, err)
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
}

func TestCalculateIgnoresInapplicablePromotion(t *testing.T) {
	svc := testQuoteService(t, testStore(t), &fakeGenerator{format: report.FormatDOCX}, nil)

	req := quoteRequest()
	req.PromotionID = "Приказ-404"
	result, err := svc.Calculate(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, result.Promotion)
}

// =============================================================================
// GenerateOffer
// =============================================================================

func TestGenerateOffer(t *testing.T) {
	gen := &fakeGenerator{format: report.FormatDOCX, payload: []byte("doc-bytes")}
	archive := &fakeArchive{}
	svc := testQuoteService(t, testStore(t), gen, archive)

	doc, err := svc.GenerateOffer(context.Background(), quoteRequest(), report.FormatDOCX)
	require.NoError(t, err)

	assert.Equal(t, 1, gen.called)
	assert.Equal(t, []byte("doc-bytes"), doc.Data)
	assert.Equal(t, "КП Комплекс от 15.10.2025.docx", doc.FileName)
	assert.Equal(t, report.FormatDOCX.ContentType(), doc.ContentType)

	require.Len(t, archive.keys, 1)
	assert.Equal(t, doc.ArchiveKey, archive.keys[0])
	assert.Contains(t, archive.keys[0], "offers/2025/10/")
}

func TestGenerateOfferUnknownFormat(t *testing.T) {
	svc := testQuoteService(t, testStore(t), &fakeGenerator{format: report.FormatDOCX}, nil)

	_, err := svc.GenerateOffer(context.Background(), quoteRequest(), report.FormatPDF)
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestGenerateOfferArchiveFailureIsNotFatal(t *testing.T) {
	gen := &fakeGenerator{format: report.FormatDOCX, payload: []byte("doc-bytes")}
	archive := &fakeArchive{err: errors.New("bucket offline")}
	svc := testQuoteService(t, testStore(t), gen, archive)

	doc, err := svc.GenerateOffer(context.Background(), quoteRequest(), report.FormatDOCX)
	require.NoError(t, err)
	assert.Empty(t, doc.ArchiveKey)
	assert.Equal(t, []byte("doc-bytes"), doc.Data)
}

func TestGenerateOfferRenderFailure(t *testing.T) {
	gen := &fakeGenerator{format: report.FormatDOCX, err: errors.New("font missing")}
	svc := testQuoteService(t, testStore(t), gen, nil)

	_, err := svc.GenerateOffer(context.Background(), quoteRequest(), report.FormatDOCX)
	require.Error(t, err)
	assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))
}
