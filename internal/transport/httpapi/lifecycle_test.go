package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/vladislavdragonenkov/storefront/internal/cache"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/service/auth"
	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/service/idempotency"
	"github.com/vladislavdragonenkov/storefront/internal/service/locator"
	"github.com/vladislavdragonenkov/storefront/internal/service/payment"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

// StorefrontAPITestSuite прогоняет сценарии покупателя через HTTP API на хранилище в памяти.
type StorefrontAPITestSuite struct {
	suite.Suite
	server   *httptest.Server
	store    *memory.Store
	payments *payment.Mock
	productA domain.Product
	productB domain.Product
}

func TestStorefrontAPITestSuite(t *testing.T) {
	suite.Run(t, new(StorefrontAPITestSuite))
}

func (suite *StorefrontAPITestSuite) SetupTest() {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel)
	baseLogger.SetOutput(io.Discard)
	logger := baseLogger.WithField("component", "api-test")

	suite.store = memory.NewStore()
	category := suite.store.AddCategory(domain.Category{Name: "Audio", Slug: "audio"})
	suite.productA = suite.store.AddProduct(domain.Product{CategoryID: category.ID, Name: "Cable", PriceMinor: 500, Currency: "usd", Stock: 10})
	suite.productB = suite.store.AddProduct(domain.Product{CategoryID: category.ID, Name: "Headphones", PriceMinor: 1500, Currency: "usd", Stock: 10})
	suite.store.AddLocation(domain.StoreLocation{Name: "Berlin Mitte", Address: "Alexanderplatz 1", Lat: 52.5219, Lng: 13.4132})

	tokens, err := auth.NewTokens("test-secret", time.Hour)
	suite.Require().NoError(err)

	suite.payments = payment.NewMock()
	reg := prometheus.NewRegistry()
	orderMetrics := metrics.NewOrderMetricsWithRegisterer(reg)

	carts := cart.NewService(suite.store.Cart(), suite.store.Catalog(), cache.Noop{}, orderMetrics, logger)
	router := NewRouter(Deps{
		Auth:    auth.NewService(suite.store.Users(), tokens, logger, auth.WithBcryptCost(bcrypt.MinCost)),
		Catalog: catalog.NewService(suite.store.Catalog()),
		Cart:    carts,
		Checkout: checkout.NewService(checkout.Deps{
			Carts:       suite.store.Cart(),
			Orders:      suite.store.Orders(),
			Catalog:     suite.store.Catalog(),
			Payments:    suite.payments,
			Transactor:  suite.store,
			Invalidator: carts,
			Metrics:     orderMetrics,
			Logger:      logger,
		}),
		Locator:     locator.NewService(suite.store.Locations(), nil),
		Idempotency: idempotency.NewGuard(suite.store.Idempotency(), time.Hour, logger),
		Metrics:     metrics.NewHTTPMetrics(reg),
		Logger:      logger,
	})
	suite.server = httptest.NewServer(router)
}

func (suite *StorefrontAPITestSuite) TearDownTest() {
	suite.server.Close()
}

type apiResponse struct {
	code   int
	header http.Header
	body   []byte
}

func (r apiResponse) decode(t *testing.T, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.body, dst), string(r.body))
}

func (suite *StorefrontAPITestSuite) call(method, path, token string, body any, headers map[string]string) apiResponse {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, suite.server.URL+path, reader)
	suite.Require().NoError(err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	suite.Require().NoError(err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)
	return apiResponse{code: resp.StatusCode, header: resp.Header, body: data}
}

func (suite *StorefrontAPITestSuite) registerUser(email string) string {
	resp := suite.call(http.MethodPost, "/auth/register", "", map[string]string{
		"email":    email,
		"password": "correct-horse",
		"name":     "Buyer",
	}, nil)
	suite.Require().Equal(http.StatusCreated, resp.code, string(resp.body))

	var session sessionView
	resp.decode(suite.T(), &session)
	suite.Require().NotEmpty(session.Token)
	return session.Token
}

func (suite *StorefrontAPITestSuite) fillCart(token string) {
	for _, item := range []upsertItemRequest{
		{ProductID: suite.productA.ID, Quantity: 2},
		{ProductID: suite.productB.ID, Quantity: 1},
	} {
		resp := suite.call(http.MethodPost, "/cart/items", token, item, nil)
		suite.Require().Equal(http.StatusOK, resp.code, string(resp.body))
	}
}

func (suite *StorefrontAPITestSuite) getCart(token string) cartView {
	resp := suite.call(http.MethodGet, "/cart", token, nil, nil)
	suite.Require().Equal(http.StatusOK, resp.code)
	var view cartView
	resp.decode(suite.T(), &view)
	return view
}

func (suite *StorefrontAPITestSuite) checkout(token string) checkoutView {
	resp := suite.call(http.MethodPost, "/orders/checkout", token, nil, nil)
	suite.Require().Equal(http.StatusCreated, resp.code, string(resp.body))
	var view checkoutView
	resp.decode(suite.T(), &view)
	return view
}

func (suite *StorefrontAPITestSuite) TestSuccessfulCheckoutLifecycle() {
	token := suite.registerUser("buyer@example.com")
	suite.fillCart(token)

	// 1. Корзина считает подытог по живым ценам
	view := suite.getCart(token)
	suite.Require().Len(view.Items, 2)
	suite.Require().Equal(int64(2500), view.SubtotalCents)
	suite.Require().Equal("25.00", view.Subtotal)
	suite.Require().Equal("usd", view.Currency)

	// 2. Checkout создаёт pending-заказ и не трогает корзину
	created := suite.checkout(token)
	suite.Require().Equal(int64(2500), created.Amount)
	suite.Require().Equal("usd", created.Currency)
	suite.Require().NotEmpty(created.PaymentIntentID)
	suite.Require().NotEmpty(created.ClientSecret)
	suite.Require().Len(suite.getCart(token).Items, 2)

	// 3. Успешная оплата переводит заказ в paid и очищает корзину
	resp := suite.call(http.MethodPost, "/orders/confirm", token, confirmRequest{
		OrderID:         created.OrderID,
		Status:          "succeeded",
		PaymentIntentID: created.PaymentIntentID,
	}, nil)
	suite.Require().Equal(http.StatusOK, resp.code, string(resp.body))
	var confirmed struct {
		Order orderView `json:"order"`
	}
	resp.decode(suite.T(), &confirmed)
	suite.Require().Equal("paid", confirmed.Order.Status)
	suite.Require().Len(confirmed.Order.Items, 2)
	suite.Require().Empty(suite.getCart(token).Items)

	// 4. Повторное подтверждение ничего не меняет
	resp = suite.call(http.MethodPost, "/orders/confirm", token, confirmRequest{OrderID: created.OrderID, Status: "succeeded"}, nil)
	suite.Require().Equal(http.StatusOK, resp.code)
	resp.decode(suite.T(), &confirmed)
	suite.Require().Equal("paid", confirmed.Order.Status)

	// 5. Заказ виден в списке и по id
	resp = suite.call(http.MethodGet, "/orders", token, nil, nil)
	suite.Require().Equal(http.StatusOK, resp.code)
	var list struct {
		Orders []orderView `json:"orders"`
	}
	resp.decode(suite.T(), &list)
	suite.Require().Len(list.Orders, 1)
	suite.Require().Equal(created.OrderID, list.Orders[0].ID)

	resp = suite.call(http.MethodGet, fmt.Sprintf("/orders/%d", created.OrderID), token, nil, nil)
	suite.Require().Equal(http.StatusOK, resp.code)
	var one struct {
		Order orderView `json:"order"`
	}
	resp.decode(suite.T(), &one)
	names := make([]string, 0, len(one.Order.Items))
	for _, item := range one.Order.Items {
		names = append(names, item.Name)
	}
	suite.Require().ElementsMatch([]string{"Cable", "Headphones"}, names)
}

func (suite *StorefrontAPITestSuite) TestPaymentMismatchKeepsOrderPending() {
	token := suite.registerUser("mismatch@example.com")
	suite.fillCart(token)
	created := suite.checkout(token)

	resp := suite.call(http.MethodPost, "/orders/confirm", token, confirmRequest{
		OrderID:         created.OrderID,
		Status:          "succeeded",
		PaymentIntentID: "pi_someone_else",
	}, nil)
	suite.Require().Equal(http.StatusBadRequest, resp.code)
	var body errorBody
	resp.decode(suite.T(), &body)
	suite.Require().Equal("payment mismatch", body.Message)

	resp = suite.call(http.MethodGet, fmt.Sprintf("/orders/%d", created.OrderID), token, nil, nil)
	var one struct {
		Order orderView `json:"order"`
	}
	resp.decode(suite.T(), &one)
	suite.Require().Equal("pending", one.Order.Status)
	suite.Require().Len(suite.getCart(token).Items, 2)
}

func (suite *StorefrontAPITestSuite) TestNonSucceededOutcomeKeepsCart() {
	token := suite.registerUser("declined@example.com")
	suite.fillCart(token)
	created := suite.checkout(token)

	resp := suite.call(http.MethodPost, "/orders/confirm", token, confirmRequest{OrderID: created.OrderID, Status: "failed"}, nil)
	suite.Require().Equal(http.StatusOK, resp.code)
	var confirmed struct {
		Order orderView `json:"order"`
	}
	resp.decode(suite.T(), &confirmed)
	suite.Require().Equal("pending", confirmed.Order.Status)
	suite.Require().Len(suite.getCart(token).Items, 2)
}

func (suite *StorefrontAPITestSuite) TestCheckoutEmptyCart() {
	token := suite.registerUser("empty@example.com")

	resp := suite.call(http.MethodPost, "/orders/checkout", token, nil, nil)
	suite.Require().Equal(http.StatusBadRequest, resp.code)
	suite.Require().Equal(0, suite.payments.Calls)
}

func (suite *StorefrontAPITestSuite) TestCheckoutPaymentUnavailable() {
	token := suite.registerUser("offline@example.com")
	suite.fillCart(token)
	suite.payments.Err = domain.ErrPaymentAuthorityUnavailable

	resp := suite.call(http.MethodPost, "/orders/checkout", token, nil, nil)
	suite.Require().Equal(http.StatusInternalServerError, resp.code)
	var body errorBody
	resp.decode(suite.T(), &body)
	suite.Require().Equal("Internal Server Error", body.Message)
}

func (suite *StorefrontAPITestSuite) TestIdempotentCheckoutReplaysResponse() {
	token := suite.registerUser("retry@example.com")
	suite.fillCart(token)
	headers := map[string]string{idempotencyKeyHeader: "checkout-1"}

	first := suite.call(http.MethodPost, "/orders/checkout", token, nil, headers)
	suite.Require().Equal(http.StatusCreated, first.code, string(first.body))

	second := suite.call(http.MethodPost, "/orders/checkout", token, nil, headers)
	suite.Require().Equal(http.StatusCreated, second.code)
	suite.Require().Equal("true", second.header.Get(idempotentReplayHeader))
	suite.Require().JSONEq(string(first.body), string(second.body))
	suite.Require().Equal(1, suite.payments.Calls)

	conflict := suite.call(http.MethodPost, "/orders/checkout", token, map[string]string{"note": "other"}, headers)
	suite.Require().Equal(http.StatusConflict, conflict.code)

	// Тот же ключ другого пользователя, независимый запрос.
	other := suite.registerUser("other@example.com")
	suite.fillCart(other)
	resp := suite.call(http.MethodPost, "/orders/checkout", other, nil, headers)
	suite.Require().Equal(http.StatusCreated, resp.code)
	suite.Require().Empty(resp.header.Get(idempotentReplayHeader))
	suite.Require().Equal(2, suite.payments.Calls)
}

func (suite *StorefrontAPITestSuite) TestCartValidationAndStock() {
	token := suite.registerUser("cart@example.com")

	resp := suite.call(http.MethodPost, "/cart/items", token, map[string]int{"product_id": 0, "quantity": 0}, nil)
	suite.Require().Equal(http.StatusBadRequest, resp.code)
	var body errorBody
	resp.decode(suite.T(), &body)
	suite.Require().Equal("validation_error", body.Status)
	suite.Require().Len(body.Errors, 2)

	resp = suite.call(http.MethodPost, "/cart/items", token, upsertItemRequest{ProductID: suite.productA.ID, Quantity: 11}, nil)
	suite.Require().Equal(http.StatusBadRequest, resp.code)

	resp = suite.call(http.MethodPost, "/cart/items", token, upsertItemRequest{ProductID: 9999, Quantity: 1}, nil)
	suite.Require().Equal(http.StatusNotFound, resp.code)

	suite.fillCart(token)
	lineID := suite.getCart(token).Items[0].CartItemID

	resp = suite.call(http.MethodPatch, fmt.Sprintf("/cart/items/%d", lineID), token, map[string]int{"quantity": 3}, nil)
	suite.Require().Equal(http.StatusOK, resp.code)

	resp = suite.call(http.MethodPatch, fmt.Sprintf("/cart/items/%d", lineID), token, map[string]int{}, nil)
	suite.Require().Equal(http.StatusBadRequest, resp.code)

	resp = suite.call(http.MethodDelete, fmt.Sprintf("/cart/items/%d", lineID), token, nil, nil)
	suite.Require().Equal(http.StatusOK, resp.code)
	suite.Require().Len(suite.getCart(token).Items, 1)

	resp = suite.call(http.MethodDelete, "/cart/items/abc", token, nil, nil)
	suite.Require().Equal(http.StatusBadRequest, resp.code)
}

func (suite *StorefrontAPITestSuite) TestOrdersAreScopedToOwner() {
	owner := suite.registerUser("owner@example.com")
	suite.fillCart(owner)
	created := suite.checkout(owner)

	stranger := suite.registerUser("stranger@example.com")
	resp := suite.call(http.MethodGet, fmt.Sprintf("/orders/%d", created.OrderID), stranger, nil, nil)
	suite.Require().Equal(http.StatusNotFound, resp.code)

	resp = suite.call(http.MethodPost, "/orders/confirm", stranger, confirmRequest{OrderID: created.OrderID, Status: "succeeded"}, nil)
	suite.Require().Equal(http.StatusNotFound, resp.code)
}

func (suite *StorefrontAPITestSuite) TestAuthEndpoints() {
	resp := suite.call(http.MethodGet, "/cart", "", nil, nil)
	suite.Require().Equal(http.StatusUnauthorized, resp.code)

	token := suite.registerUser("me@example.com")
	resp = suite.call(http.MethodGet, "/auth/me", token, nil, nil)
	suite.Require().Equal(http.StatusOK, resp.code)
	var me struct {
		User userView `json:"user"`
	}
	resp.decode(suite.T(), &me)
	suite.Require().Equal("me@example.com", me.User.Email)

	resp = suite.call(http.MethodPost, "/auth/login", "", loginRequest{Email: "me@example.com", Password: "wrong-password"}, nil)
	suite.Require().Equal(http.StatusUnauthorized, resp.code)

	resp = suite.call(http.MethodPost, "/auth/login", "", loginRequest{Email: "ME@example.com", Password: "correct-horse"}, nil)
	suite.Require().Equal(http.StatusOK, resp.code)

	resp = suite.call(http.MethodPost, "/auth/register", "", registerRequest{Email: "me@example.com", Password: "correct-horse", Name: "Again"}, nil)
	suite.Require().Equal(http.StatusConflict, resp.code)
}

func (suite *StorefrontAPITestSuite) TestCatalogAndStores() {
	resp := suite.call(http.MethodGet, "/products?sort=price_desc", "", nil, nil)
	suite.Require().Equal(http.StatusOK, resp.code)
	var products struct {
		Products []productView `json:"products"`
	}
	resp.decode(suite.T(), &products)
	suite.Require().Len(products.Products, 2)
	suite.Require().Equal("Headphones", products.Products[0].Name)
	suite.Require().Equal("15.00", products.Products[0].Price)
	suite.Require().Equal("audio", products.Products[0].CategorySlug)

	resp = suite.call(http.MethodGet, "/products?page=abc", "", nil, nil)
	suite.Require().Equal(http.StatusBadRequest, resp.code)

	resp = suite.call(http.MethodGet, fmt.Sprintf("/products/%d", suite.productA.ID), "", nil, nil)
	suite.Require().Equal(http.StatusOK, resp.code)

	resp = suite.call(http.MethodGet, "/products/9999", "", nil, nil)
	suite.Require().Equal(http.StatusNotFound, resp.code)

	resp = suite.call(http.MethodGet, "/categories", "", nil, nil)
	suite.Require().Equal(http.StatusOK, resp.code)

	resp = suite.call(http.MethodGet, "/stores/nearby", "", nil, nil)
	suite.Require().Equal(http.StatusOK, resp.code)
	var nearby struct {
		Origin *originView `json:"origin"`
		Stores []storeView `json:"stores"`
	}
	resp.decode(suite.T(), &nearby)
	suite.Require().Nil(nearby.Origin)
	suite.Require().Len(nearby.Stores, 1)

	resp = suite.call(http.MethodGet, "/stores/nearby?lat=52.52&lng=13.40&radius_km=5", "", nil, nil)
	suite.Require().Equal(http.StatusOK, resp.code)
	resp.decode(suite.T(), &nearby)
	suite.Require().NotNil(nearby.Origin)
	suite.Require().Len(nearby.Stores, 1)
	suite.Require().NotNil(nearby.Stores[0].DistanceKm)

	resp = suite.call(http.MethodGet, "/stores/nearby?address=Berlin", "", nil, nil)
	suite.Require().Equal(http.StatusInternalServerError, resp.code)
}
