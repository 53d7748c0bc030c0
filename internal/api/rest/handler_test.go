package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenarts/mint-ledger/internal/batch"
	"github.com/lumenarts/mint-ledger/internal/domain"
	"github.com/lumenarts/mint-ledger/internal/ledger"
	"github.com/lumenarts/mint-ledger/internal/logger"
	"github.com/lumenarts/mint-ledger/internal/store/schema"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fakeService implements Service with per-test function fields; unset
// operations fail the test if reached.
type fakeService struct {
	t *testing.T

	onInstantiate  func(cfg *domain.Config, version string) error
	onMintBatch    func(caller domain.Address, amount uint64, funds domain.Funds) ([]string, error)
	onBurnBatch    func(caller domain.Address, tokenNumbers []string) (batch.Result, error)
	onPledge       func(caller domain.Address, tokenNumbers []string) (batch.Result, error)
	onGetState     func() (*domain.CollectionState, error)
	onGetItem      func(tokenNumber string) (*domain.Item, error)
	onListByOwner  func(owner domain.Address, limit, offset int) ([]*domain.Item, error)
	onGetChanges   func(cursor int64, limit int) ([]*schema.ChangesJournal, error)
	onBurnedStatus func(tokenNumbers []string) ([]domain.BurnedEntry, error)
	onFreeze       func(caller domain.Address) error
	onRemoteMint   func(caller, owner domain.Address, amount uint64, funds domain.Funds) ([]string, error)
}

func (f *fakeService) unexpected(name string) {
	f.t.Helper()
	f.t.Fatalf("unexpected call to %s", name)
}

func (f *fakeService) Instantiate(_ context.Context, cfg *domain.Config, version string) error {
	if f.onInstantiate == nil {
		f.unexpected("Instantiate")
	}
	return f.onInstantiate(cfg, version)
}

func (f *fakeService) UpdateConfig(context.Context, domain.Address, *domain.Config) error {
	f.unexpected("UpdateConfig")
	return nil
}

func (f *fakeService) Freeze(_ context.Context, caller domain.Address) error {
	if f.onFreeze == nil {
		f.unexpected("Freeze")
	}
	return f.onFreeze(caller)
}

func (f *fakeService) Unfreeze(context.Context, domain.Address) error {
	f.unexpected("Unfreeze")
	return nil
}

func (f *fakeService) Pause(context.Context, domain.Address) error {
	f.unexpected("Pause")
	return nil
}

func (f *fakeService) Unpause(context.Context, domain.Address) error {
	f.unexpected("Unpause")
	return nil
}

func (f *fakeService) Migrate(context.Context, domain.Address, string, *domain.Config, bool) error {
	f.unexpected("Migrate")
	return nil
}

func (f *fakeService) StoreBatch(context.Context, domain.Address, []*domain.Metadata) ([]string, error) {
	f.unexpected("StoreBatch")
	return nil, nil
}

func (f *fakeService) StoreFromTemplate(context.Context, domain.Address, [][]string) ([]string, error) {
	f.unexpected("StoreFromTemplate")
	return nil, nil
}

func (f *fakeService) MintBatch(_ context.Context, caller domain.Address, amount uint64, funds domain.Funds) ([]string, error) {
	if f.onMintBatch == nil {
		f.unexpected("MintBatch")
	}
	return f.onMintBatch(caller, amount, funds)
}

func (f *fakeService) RemoteMintBatch(_ context.Context, caller, owner domain.Address, amount uint64, funds domain.Funds) ([]string, error) {
	if f.onRemoteMint == nil {
		f.unexpected("RemoteMintBatch")
	}
	return f.onRemoteMint(caller, owner, amount, funds)
}

func (f *fakeService) Pledge(_ context.Context, caller domain.Address, tokenNumbers []string) (batch.Result, error) {
	if f.onPledge == nil {
		f.unexpected("Pledge")
	}
	return f.onPledge(caller, tokenNumbers)
}

func (f *fakeService) BurnBatch(_ context.Context, caller domain.Address, tokenNumbers []string) (batch.Result, error) {
	if f.onBurnBatch == nil {
		f.unexpected("BurnBatch")
	}
	return f.onBurnBatch(caller, tokenNumbers)
}

func (f *fakeService) RemoteBurnBatch(context.Context, domain.Address, domain.Address, []string) (batch.Result, error) {
	f.unexpected("RemoteBurnBatch")
	return batch.Result{}, nil
}

func (f *fakeService) TransferBatch(context.Context, domain.Address, []ledger.TransferInput) (batch.Result, error) {
	f.unexpected("TransferBatch")
	return batch.Result{}, nil
}

func (f *fakeService) Approve(context.Context, domain.Address, string, domain.Address, *time.Time) error {
	f.unexpected("Approve")
	return nil
}

func (f *fakeService) Revoke(context.Context, domain.Address, string, domain.Address) error {
	f.unexpected("Revoke")
	return nil
}

func (f *fakeService) ApproveAll(context.Context, domain.Address, domain.Address, *time.Time) error {
	f.unexpected("ApproveAll")
	return nil
}

func (f *fakeService) RevokeAll(context.Context, domain.Address, domain.Address) error {
	f.unexpected("RevokeAll")
	return nil
}

func (f *fakeService) GetState(context.Context) (*domain.CollectionState, error) {
	if f.onGetState == nil {
		f.unexpected("GetState")
	}
	return f.onGetState()
}

func (f *fakeService) GetItem(_ context.Context, tokenNumber string) (*domain.Item, error) {
	if f.onGetItem == nil {
		f.unexpected("GetItem")
	}
	return f.onGetItem(tokenNumber)
}

func (f *fakeService) GetItems(context.Context, []string) ([]*domain.Item, error) {
	f.unexpected("GetItems")
	return nil, nil
}

func (f *fakeService) ListItemsByOwner(_ context.Context, owner domain.Address, limit, offset int) ([]*domain.Item, error) {
	if f.onListByOwner == nil {
		f.unexpected("ListItemsByOwner")
	}
	return f.onListByOwner(owner, limit, offset)
}

func (f *fakeService) PledgedBy(context.Context, domain.Address) ([]string, error) {
	f.unexpected("PledgedBy")
	return nil, nil
}

func (f *fakeService) IsPledged(context.Context, string) (bool, error) {
	f.unexpected("IsPledged")
	return false, nil
}

func (f *fakeService) BurntAmount(context.Context, domain.Address) (uint64, error) {
	f.unexpected("BurntAmount")
	return 0, nil
}

func (f *fakeService) BurntList(context.Context, domain.Address) ([]string, error) {
	f.unexpected("BurntList")
	return nil, nil
}

func (f *fakeService) BurnedStatus(_ context.Context, tokenNumbers []string) ([]domain.BurnedEntry, error) {
	if f.onBurnedStatus == nil {
		f.unexpected("BurnedStatus")
	}
	return f.onBurnedStatus(tokenNumbers)
}

func (f *fakeService) GetChanges(_ context.Context, cursor int64, limit int) ([]*schema.ChangesJournal, error) {
	if f.onGetChanges == nil {
		f.unexpected("GetChanges")
	}
	return f.onGetChanges(cursor, limit)
}

var _ Service = (*fakeService)(nil)

const (
	testCreator = "wasm1creatorcreatorcreator"
	testBuyer   = "wasm1buyerbuyerbuyerbuyer"
)

// newTestRouter wires the handlers without the auth middleware; callers come
// from request bodies, the way API-key-authenticated backends send them.
func newTestRouter(handler *Handler) *gin.Engine {
	router := gin.New()
	router.GET("/health", handler.HealthCheck)
	v1 := router.Group("/api/v1")
	v1.POST("/collection", handler.Instantiate)
	v1.POST("/collection/freeze", handler.Freeze)
	v1.GET("/collection", handler.GetState)
	v1.POST("/mint", handler.Mint)
	v1.POST("/mint/remote", handler.RemoteMint)
	v1.POST("/pledges", handler.Pledge)
	v1.POST("/burn", handler.Burn)
	v1.GET("/items/:token_number", handler.GetItem)
	v1.GET("/owners/:address/items", handler.ListItemsByOwnerPath)
	v1.GET("/burns/status", handler.GetBurnedStatus)
	v1.GET("/changes", handler.GetChanges)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(NewHandler(&fakeService{t: t}))

	w := doJSON(t, router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMintEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		onMintBatch    func(caller domain.Address, amount uint64, funds domain.Funds) ([]string, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "successful mint",
			body: gin.H{
				"caller": testBuyer,
				"amount": 2,
				"funds":  []gin.H{{"denom": "uluna", "amount": 8000000}},
			},
			onMintBatch: func(caller domain.Address, amount uint64, funds domain.Funds) ([]string, error) {
				assert.Equal(t, domain.Address(testBuyer), caller)
				assert.Equal(t, uint64(2), amount)
				assert.Equal(t, domain.Funds{{Denom: "uluna", Amount: 8000000}}, funds)
				return []string{"0", "1"}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "amount defaults to one",
			body: gin.H{
				"caller": testBuyer,
				"funds":  []gin.H{{"denom": "uluna", "amount": 4000000}},
			},
			onMintBatch: func(caller domain.Address, amount uint64, funds domain.Funds) ([]string, error) {
				assert.Equal(t, uint64(1), amount)
				return []string{"0"}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "underpayment is a conflict",
			body: gin.H{
				"caller": testBuyer,
				"funds":  []gin.H{{"denom": "uluna", "amount": 1}},
			},
			onMintBatch: func(domain.Address, uint64, domain.Funds) ([]string, error) {
				return nil, domain.ErrInsufficientFunds
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "insufficient_funds",
		},
		{
			name: "paused collection is a conflict",
			body: gin.H{
				"caller": testBuyer,
				"funds":  []gin.H{{"denom": "uluna", "amount": 4000000}},
			},
			onMintBatch: func(domain.Address, uint64, domain.Funds) ([]string, error) {
				return nil, domain.ErrCollectionPaused
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "paused",
		},
		{
			name: "malformed caller address",
			body: gin.H{
				"caller": "NOT-AN-ADDRESS",
				"funds":  []gin.H{{"denom": "uluna", "amount": 4000000}},
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "invalid_address",
		},
		{
			name:           "missing caller",
			body:           gin.H{"funds": []gin.H{{"denom": "uluna", "amount": 4000000}}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing funds",
			body:           gin.H{"caller": testBuyer},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &fakeService{t: t, onMintBatch: tt.onMintBatch}
			router := newTestRouter(NewHandler(service))

			w := doJSON(t, router, http.MethodPost, "/api/v1/mint", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				var resp errorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectedCode, resp.Error.Code)
			}
		})
	}
}

func TestRemoteMintEndpoint(t *testing.T) {
	t.Run("delegates the paid flow to the named owner", func(t *testing.T) {
		service := &fakeService{
			t: t,
			onRemoteMint: func(caller, owner domain.Address, amount uint64, funds domain.Funds) ([]string, error) {
				assert.Equal(t, domain.Address(testCreator), caller)
				assert.Equal(t, domain.Address(testBuyer), owner)
				assert.Equal(t, uint64(2), amount)
				assert.Equal(t, domain.Funds{{Denom: "uluna", Amount: 8000000}}, funds)
				return []string{"0", "1"}, nil
			},
		}
		router := newTestRouter(NewHandler(service))

		w := doJSON(t, router, http.MethodPost, "/api/v1/mint/remote", gin.H{
			"caller": testCreator,
			"owner":  testBuyer,
			"amount": 2,
			"funds":  []gin.H{{"denom": "uluna", "amount": 8000000}},
		})

		require.Equal(t, http.StatusOK, w.Code)
		var resp mintResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"0", "1"}, resp.TokenNumbers)
	})

	t.Run("non-creator caller is forbidden", func(t *testing.T) {
		service := &fakeService{
			t: t,
			onRemoteMint: func(domain.Address, domain.Address, uint64, domain.Funds) ([]string, error) {
				return nil, domain.ErrUnauthorized
			},
		}
		router := newTestRouter(NewHandler(service))

		w := doJSON(t, router, http.MethodPost, "/api/v1/mint/remote", gin.H{
			"caller": testBuyer,
			"owner":  testBuyer,
			"funds":  []gin.H{{"denom": "uluna", "amount": 4000000}},
		})

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing owner", func(t *testing.T) {
		service := &fakeService{t: t}
		router := newTestRouter(NewHandler(service))

		w := doJSON(t, router, http.MethodPost, "/api/v1/mint/remote", gin.H{
			"caller": testCreator,
			"funds":  []gin.H{{"denom": "uluna", "amount": 4000000}},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBurnEndpointPartialContinue(t *testing.T) {
	service := &fakeService{
		t: t,
		onBurnBatch: func(caller domain.Address, tokenNumbers []string) (batch.Result, error) {
			assert.Equal(t, domain.Address(testBuyer), caller)
			assert.Equal(t, []string{"0", "1", "2"}, tokenNumbers)

			var result batch.Result
			result.Ok("0")
			result.Fail("1", domain.ErrNotPledged)
			result.Ok("2")
			return result, nil
		},
	}
	router := newTestRouter(NewHandler(service))

	w := doJSON(t, router, http.MethodPost, "/api/v1/burn", gin.H{
		"caller":        testBuyer,
		"token_numbers": []string{"0", "1", "2"},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var result batch.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, []string{"0", "2"}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "1", result.Failed[0].TokenNumber)
	assert.Equal(t, "not_pledged", result.Failed[0].Reason)
}

func TestBurnEndpointBatchTooLarge(t *testing.T) {
	service := &fakeService{
		t: t,
		onBurnBatch: func(domain.Address, []string) (batch.Result, error) {
			return batch.Result{}, domain.ErrBatchTooLarge
		},
	}
	router := newTestRouter(NewHandler(service))

	ids := make([]string, 31)
	for i := range ids {
		ids[i] = domain.TokenNumber(uint64(i))
	}
	w := doJSON(t, router, http.MethodPost, "/api/v1/burn", gin.H{
		"caller":        testBuyer,
		"token_numbers": ids,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPledgeEndpoint(t *testing.T) {
	service := &fakeService{
		t: t,
		onPledge: func(caller domain.Address, tokenNumbers []string) (batch.Result, error) {
			var result batch.Result
			for _, id := range tokenNumbers {
				result.Ok(id)
			}
			return result, nil
		},
	}
	router := newTestRouter(NewHandler(service))

	w := doJSON(t, router, http.MethodPost, "/api/v1/pledges", gin.H{
		"caller":        testBuyer,
		"token_numbers": []string{"3"},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var result batch.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, []string{"3"}, result.Succeeded)
	assert.Empty(t, result.Failed)
}

func TestInstantiateEndpoint(t *testing.T) {
	service := &fakeService{
		t: t,
		onInstantiate: func(cfg *domain.Config, version string) error {
			assert.Equal(t, domain.Address(testCreator), cfg.Creator)
			assert.Equal(t, uint64(20), cfg.SupplyCap)
			assert.Equal(t, "1.0.0", version)
			return nil
		},
	}
	router := newTestRouter(NewHandler(service))

	w := doJSON(t, router, http.MethodPost, "/api/v1/collection", gin.H{
		"schema_version": "1.0.0",
		"config": gin.H{
			"creator":        testCreator,
			"name":           "Test Collection",
			"supply_cap":     20,
			"payment":        gin.H{"denom": "uluna", "amount": 4000000},
			"payout_address": testCreator,
			"burn":           gin.H{"owner_can_burn": true},
		},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestFreezeEndpointUnauthorized(t *testing.T) {
	service := &fakeService{
		t: t,
		onFreeze: func(caller domain.Address) error {
			return domain.ErrUnauthorized
		},
	}
	router := newTestRouter(NewHandler(service))

	w := doJSON(t, router, http.MethodPost, "/api/v1/collection/freeze", gin.H{
		"caller": testBuyer,
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetStateEndpoint(t *testing.T) {
	service := &fakeService{
		t: t,
		onGetState: func() (*domain.CollectionState, error) {
			return &domain.CollectionState{
				Config: domain.Config{
					Creator:   testCreator,
					Name:      "Test Collection",
					SupplyCap: 20,
				},
				SchemaVersion: "1.0.0",
				MintedCount:   3,
			}, nil
		},
	}
	router := newTestRouter(NewHandler(service))

	w := doJSON(t, router, http.MethodGet, "/api/v1/collection", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var state domain.CollectionState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, uint64(3), state.MintedCount)
	assert.Equal(t, "Test Collection", state.Config.Name)
}

func TestGetItemEndpoint(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		service := &fakeService{
			t: t,
			onGetItem: func(tokenNumber string) (*domain.Item, error) {
				assert.Equal(t, "7", tokenNumber)
				return &domain.Item{TokenNumber: "7", Owner: testBuyer}, nil
			},
		}
		router := newTestRouter(NewHandler(service))

		w := doJSON(t, router, http.MethodGet, "/api/v1/items/7", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var item domain.Item
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
		assert.Equal(t, domain.Address(testBuyer), item.Owner)
	})

	t.Run("not found", func(t *testing.T) {
		service := &fakeService{
			t: t,
			onGetItem: func(string) (*domain.Item, error) {
				return nil, domain.ErrTokenNotFound
			},
		}
		router := newTestRouter(NewHandler(service))

		w := doJSON(t, router, http.MethodGet, "/api/v1/items/404", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)

		var resp errorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "not_found", resp.Error.Code)
	})
}

func TestListItemsByOwnerEndpoint(t *testing.T) {
	service := &fakeService{
		t: t,
		onListByOwner: func(owner domain.Address, limit, offset int) ([]*domain.Item, error) {
			assert.Equal(t, domain.Address(testBuyer), owner)
			assert.Equal(t, 100, limit) // clamped from 500
			assert.Equal(t, 10, offset)
			return []*domain.Item{{TokenNumber: "4", Owner: testBuyer}}, nil
		},
	}
	router := newTestRouter(NewHandler(service))

	w := doJSON(t, router, http.MethodGet, "/api/v1/owners/"+testBuyer+"/items?limit=500&offset=10", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp itemsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "4", resp.Items[0].TokenNumber)
}

func TestBurnedStatusEndpoint(t *testing.T) {
	service := &fakeService{
		t: t,
		onBurnedStatus: func(tokenNumbers []string) ([]domain.BurnedEntry, error) {
			assert.Equal(t, []string{"0", "1"}, tokenNumbers)
			return []domain.BurnedEntry{
				{TokenNumber: "0", Burned: true},
				{TokenNumber: "1", Burned: false},
			}, nil
		},
	}
	router := newTestRouter(NewHandler(service))

	w := doJSON(t, router, http.MethodGet, "/api/v1/burns/status?ids=0,1", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp burnedStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Statuses, 2)
	assert.True(t, resp.Statuses[0].Burned)
	assert.False(t, resp.Statuses[1].Burned)
}

func TestGetChangesEndpoint(t *testing.T) {
	changedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	service := &fakeService{
		t: t,
		onGetChanges: func(cursor int64, limit int) ([]*schema.ChangesJournal, error) {
			assert.Equal(t, int64(5), cursor)
			assert.Equal(t, 50, limit)
			return []*schema.ChangesJournal{
				{Cursor: 6, SubjectType: "item", SubjectID: "0", Action: "minted", ChangedAt: changedAt},
			}, nil
		},
	}
	router := newTestRouter(NewHandler(service))

	w := doJSON(t, router, http.MethodGet, "/api/v1/changes?cursor=5", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp changesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Changes, 1)
	assert.Equal(t, int64(6), resp.Changes[0].Cursor)
	assert.Equal(t, "minted", resp.Changes[0].Action)
}
