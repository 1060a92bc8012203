package handlers_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"francoggm/vnpay-go-redis/internal/app/notify"
	"francoggm/vnpay-go-redis/internal/app/server"
	"francoggm/vnpay-go-redis/internal/app/server/handlers"
	"francoggm/vnpay-go-redis/internal/app/storage"
	"francoggm/vnpay-go-redis/internal/config"
	"francoggm/vnpay-go-redis/internal/models"
	"francoggm/vnpay-go-redis/internal/vnpay"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	testSecret  = "SECRETKEY"
	testTmnCode = "TMN00001"
)

// queryService replaces the outbound QueryDR call of the real service.
type queryService struct {
	*vnpay.Service
	result *models.QueryResult
	err    error

	calls []string
}

func (s *queryService) QueryDR(_ context.Context, requestCode, orderCode string, transactionDate time.Time, clientIP string) (*models.QueryResult, error) {
	s.calls = append(s.calls, strings.Join([]string{requestCode, orderCode, transactionDate.Format("20060102150405"), clientIP}, "|"))
	return s.result, s.err
}

type failingProcessor struct {
	notify.Base
	txType string
	panics bool
}

func (p failingProcessor) Type() string { return p.txType }

func (p failingProcessor) ProcessIPN(context.Context, *models.PaymentResponse) error {
	if p.panics {
		panic("ledger exploded")
	}
	return errors.New("merchant ledger unavailable")
}

func (p failingProcessor) ProcessReturnURL(ctx context.Context, response *models.PaymentResponse) error {
	return p.ProcessIPN(ctx, response)
}

type HandlersTestSuite struct {
	suite.Suite
	cfg      *config.Config
	service  *queryService
	recorder *notify.Recorder
	handler  http.Handler
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (s *HandlersTestSuite) SetupTest() {
	s.cfg = &config.Config{
		VNPay: config.VNPay{
			ReturnPath:       "/vnpay/return",
			IPNPath:          "/vnpay/ipn",
			FallbackRedirect: "/",
		},
	}

	opts := vnpay.Options{
		APIURL:     "https://sandbox.vnpayment.vn",
		TmnCode:    testTmnCode,
		HashSecret: testSecret,
		ReturnPath: "/vnpay/return",
		Locale:     "vn",
		CurrCode:   "VND",
		OrderType:  "other",
		Location:   time.UTC,
	}
	s.service = &queryService{Service: vnpay.NewService(opts, storage.NewMemoryCorrelationStore(), nil, slog.Default())}
	s.rebuild()
}

func (s *HandlersTestSuite) rebuild() {
	s.recorder = notify.NewRecorder(storage.NewMemoryResponseStore(0), slog.Default())
	dispatcher := notify.NewDispatcher(slog.Default(),
		s.recorder,
		failingProcessor{txType: "broken"},
		failingProcessor{txType: "explosive", panics: true},
	)

	h := handlers.NewHandlers(s.cfg, s.service, dispatcher, s.recorder, slog.Default())
	s.handler = server.NewServer(s.cfg, h, slog.Default()).Handler()
}

func (s *HandlersTestSuite) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *HandlersTestSuite) createPayment(body string) map[string]string {
	req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(body))
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	rec := s.do(req)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]string
	s.Require().NoError(sonic.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func callbackQuery(secret, requestCode, status string) string {
	params := vnpay.NewParams()
	params.Set("vnp_Amount", "10000000")
	params.Set("vnp_BankCode", "NCB")
	params.Set("vnp_OrderInfo", "ORDER-1")
	params.Set("vnp_PayDate", "20240501101500")
	params.Set("vnp_ResponseCode", "00")
	params.Set("vnp_TmnCode", testTmnCode)
	params.Set("vnp_TransactionNo", "14123456")
	params.Set("vnp_TransactionStatus", status)
	params.Set("vnp_TxnRef", requestCode)

	return params.Encode() + "&vnp_SecureHashType=HmacSHA512&vnp_SecureHash=" + vnpay.Sign(secret, params.SigningString())
}

func (s *HandlersTestSuite) ipn(query string) models.IPNAck {
	rec := s.do(httptest.NewRequest(http.MethodGet, "/vnpay/ipn?"+query, nil))
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("application/json", rec.Header().Get("Content-Type"))

	var ack models.IPNAck
	s.Require().NoError(sonic.Unmarshal(rec.Body.Bytes(), &ack))
	return ack
}

func (s *HandlersTestSuite) TestCreatePayment() {
	resp := s.createPayment(`{"type":"order","requestCode":"ABC123","orderCode":"ORDER-1","amount":100000,"returnUrl":"/orders/42"}`)

	s.Equal("ABC123", resp["requestCode"])

	link, err := url.Parse(resp["url"])
	s.Require().NoError(err)
	s.Equal("/paymentv2/vpcpay.html", link.Path)

	query := link.Query()
	s.Equal("10000000", query.Get("vnp_Amount"))
	s.Equal("203.0.113.9", query.Get("vnp_IpAddr"))
	s.Equal("http://example.com/vnpay/return", query.Get("vnp_ReturnUrl"))
	s.Len(query.Get("vnp_SecureHash"), 128)
}

func (s *HandlersTestSuite) TestCreatePayment_GeneratesCodeAndPublicURL() {
	s.cfg.Server.PublicURL = "https://shop.example"

	resp := s.createPayment(`{"orderCode":"ORDER-1","amount":"15000.5"}`)
	s.Regexp(`^[A-Z0-9]{12}$`, resp["requestCode"])

	link, err := url.Parse(resp["url"])
	s.Require().NoError(err)
	s.Equal("1500050", link.Query().Get("vnp_Amount"))
	s.Equal("https://shop.example/vnpay/return", link.Query().Get("vnp_ReturnUrl"))

	// Without returnUrl the browser comes back to the payment status page.
	rec := s.do(httptest.NewRequest(http.MethodGet, "/vnpay/return?"+callbackQuery(testSecret, resp["requestCode"], "00"), nil))
	s.Equal(http.StatusFound, rec.Code)
	s.Equal("/payments/"+resp["requestCode"], rec.Header().Get("Location"))
}

func (s *HandlersTestSuite) TestCreatePayment_BadRequests() {
	for _, body := range []string{`{`, `{"orderCode":"ORDER-1","amount":-1}`} {
		rec := s.do(httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(body)))
		s.Equal(http.StatusBadRequest, rec.Code, body)
	}
}

func (s *HandlersTestSuite) TestCreatePayment_MissingConfiguration() {
	s.service.Service = vnpay.NewService(vnpay.Options{APIURL: "https://sandbox.vnpayment.vn"}, storage.NewMemoryCorrelationStore(), nil, slog.Default())

	rec := s.do(httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(`{"amount":1}`)))
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Contains(rec.Body.String(), "missing configuration")
}

func (s *HandlersTestSuite) TestReturn_RedirectsToStoredTarget() {
	s.createPayment(`{"type":"order","requestCode":"ABC123","orderCode":"ORDER-1","amount":100000,"returnUrl":"/orders/42"}`)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/vnpay/return?"+callbackQuery(testSecret, "ABC123", "00"), nil))
	s.Equal(http.StatusFound, rec.Code)
	s.Equal("/orders/42", rec.Header().Get("Location"))

	returnURL, ipn, err := s.recorder.Responses(context.Background(), "ABC123")
	s.Require().NoError(err)
	s.Require().NotNil(returnURL)
	s.True(*returnURL.Result)
	s.Nil(ipn)
}

func (s *HandlersTestSuite) TestReturn_FallbackWithoutCorrelation() {
	rec := s.do(httptest.NewRequest(http.MethodGet, "/vnpay/return?"+callbackQuery(testSecret, "UNKNOWN", "00"), nil))
	s.Equal(http.StatusFound, rec.Code)
	s.Equal("/", rec.Header().Get("Location"))
}

func (s *HandlersTestSuite) TestReturn_RedirectsWhenProcessorFails() {
	s.createPayment(`{"type":"broken","requestCode":"ABC123","orderCode":"ORDER-1","amount":1,"returnUrl":"/orders/42"}`)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/vnpay/return?"+callbackQuery(testSecret, "ABC123", "00"), nil))
	s.Equal(http.StatusFound, rec.Code)
	s.Equal("/orders/42", rec.Header().Get("Location"))
}

func (s *HandlersTestSuite) TestIPN_Confirmed() {
	s.createPayment(`{"type":"order","requestCode":"ABC123","orderCode":"ORDER-1","amount":100000}`)

	ack := s.ipn(callbackQuery(testSecret, "ABC123", "01"))
	s.Equal(models.IPNAck{RspCode: "00", Message: ""}, ack)

	_, ipn, err := s.recorder.Responses(context.Background(), "ABC123")
	s.Require().NoError(err)
	s.Require().NotNil(ipn)
	s.False(*ipn.Result)
}

func (s *HandlersTestSuite) TestIPN_InvalidSignatureStillAcknowledged() {
	ack := s.ipn(callbackQuery("wrong-secret", "ABC123", "00"))
	s.Equal("00", ack.RspCode)

	_, ipn, err := s.recorder.Responses(context.Background(), "ABC123")
	s.Require().NoError(err)
	s.Require().NotNil(ipn)
	s.Nil(ipn.Result)
}

func (s *HandlersTestSuite) TestIPN_ProcessorErrorIsAcknowledged() {
	s.createPayment(`{"type":"broken","requestCode":"ABC123","orderCode":"ORDER-1","amount":1}`)

	ack := s.ipn(callbackQuery(testSecret, "ABC123", "00"))
	s.Equal(models.IPNAck{RspCode: "02", Message: "merchant ledger unavailable"}, ack)
}

func (s *HandlersTestSuite) TestIPN_ProcessorPanicIsAcknowledged() {
	s.createPayment(`{"type":"explosive","requestCode":"ABC123","orderCode":"ORDER-1","amount":1}`)

	ack := s.ipn(callbackQuery(testSecret, "ABC123", "00"))
	s.Equal("02", ack.RspCode)
	s.Contains(ack.Message, "ledger exploded")
}

func (s *HandlersTestSuite) TestGetPayment() {
	success := true
	s.service.result = &models.QueryResult{Result: &success, VNPData: map[string]string{"TransactionStatus": "00"}}

	s.createPayment(`{"type":"order","requestCode":"ABC123","orderCode":"ORDER-1","amount":100000}`)
	s.do(httptest.NewRequest(http.MethodGet, "/vnpay/return?"+callbackQuery(testSecret, "ABC123", "00"), nil))
	s.ipn(callbackQuery(testSecret, "ABC123", "00"))

	req := httptest.NewRequest(http.MethodGet, "/payments/ABC123", nil)
	req.RemoteAddr = "198.51.100.7:5555"
	rec := s.do(req)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		ReturnURL *models.PaymentResponse `json:"returnUrlResponse"`
		IPN       *models.PaymentResponse `json:"ipnResponse"`
		QueryDR   *models.QueryResult     `json:"querydr"`
	}
	s.Require().NoError(sonic.Unmarshal(rec.Body.Bytes(), &body))

	s.Require().NotNil(body.ReturnURL)
	s.Require().NotNil(body.IPN)
	s.Require().NotNil(body.QueryDR)
	s.True(*body.QueryDR.Result)
	s.Equal([]string{"ABC123|ORDER-1|20240501101500|198.51.100.7"}, s.service.calls)
}

func (s *HandlersTestSuite) TestGetPayment_NotFound() {
	rec := s.do(httptest.NewRequest(http.MethodGet, "/payments/NOPE", nil))
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlersTestSuite) TestQueryPayment() {
	failed := false
	s.service.result = &models.QueryResult{Result: &failed, VNPData: map[string]string{"TransactionStatus": "02"}}

	req := httptest.NewRequest(http.MethodPost, "/payments/ABC123/querydr", strings.NewReader(`{"orderCode":"ORDER-1","transactionDate":"20240501101500"}`))
	rec := s.do(req)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"result":false,"vnpData":{"TransactionStatus":"02"}}`, rec.Body.String())
}

func (s *HandlersTestSuite) TestQueryPayment_Errors() {
	rec := s.do(httptest.NewRequest(http.MethodPost, "/payments/ABC123/querydr", strings.NewReader(`{"transactionDate":"yesterday"}`)))
	s.Equal(http.StatusBadRequest, rec.Code)

	s.service.err = &vnpay.TransportError{StatusCode: http.StatusServiceUnavailable}
	rec = s.do(httptest.NewRequest(http.MethodPost, "/payments/ABC123/querydr", strings.NewReader(`{"transactionDate":"20240501101500"}`)))
	s.Equal(http.StatusBadGateway, rec.Code)
	s.Contains(rec.Body.String(), "503")
}

func (s *HandlersTestSuite) TestLivenessAndMetrics() {
	s.Equal(http.StatusOK, s.do(httptest.NewRequest(http.MethodGet, "/liveness", nil)).Code)

	s.ipn(callbackQuery(testSecret, "ABC123", "00"))
	rec := s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "vnpay_ipn_ack_total")
}

func TestCallbackQueryIsVerifiable(t *testing.T) {
	query, err := url.ParseQuery(callbackQuery(testSecret, "ABC123", "00"))
	require.NoError(t, err)

	service := vnpay.NewService(vnpay.Options{APIURL: "x", TmnCode: testTmnCode, HashSecret: testSecret}, storage.NewMemoryCorrelationStore(), nil, slog.Default())
	result, err := service.ProcessCallback(context.Background(), query)
	require.NoError(t, err)
	require.NotNil(t, result.Response.Result)
	assert.True(t, *result.Response.Result)
}
