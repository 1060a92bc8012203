package vnpay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"francoggm/vnpay-go-redis/internal/models"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

const defaultQueryTimeout = 10 * time.Second

// Field order of the QueryDR request signature, as documented by the gateway.
var queryRequestFields = []string{
	"vnp_RequestId",
	"vnp_Version",
	"vnp_Command",
	"vnp_TmnCode",
	"vnp_TxnRef",
	"vnp_TransactionDate",
	"vnp_CreateDate",
	"vnp_IpAddr",
	"vnp_OrderInfo",
}

// Field order of the QueryDR reply signature.
var queryReplyFields = []string{
	"vnp_ResponseId",
	"vnp_Command",
	"vnp_ResponseCode",
	"vnp_Message",
	"vnp_TmnCode",
	"vnp_TxnRef",
	"vnp_Amount",
	"vnp_BankCode",
	"vnp_PayDate",
	"vnp_TransactionNo",
	"vnp_TransactionType",
	"vnp_TransactionStatus",
	"vnp_OrderInfo",
	"vnp_PromotionCode",
	"vnp_PromotionAmount",
}

var replyDecoder = sonic.Config{UseNumber: true}.Froze()

type QueryClient struct {
	client  *fasthttp.Client
	limiter *rate.Limiter
}

func NewQueryClient(client *fasthttp.Client) *QueryClient {
	if client == nil {
		client = &fasthttp.Client{MaxConnsPerHost: 10}
	}

	return &QueryClient{client: client}
}

// WithRateLimit caps outgoing queries at rps with the given burst. The
// gateway throttles QueryDR per merchant. A non-positive rps disables it.
func (c *QueryClient) WithRateLimit(rps float64, burst int) *QueryClient {
	if rps <= 0 {
		c.limiter = nil
		return c
	}
	if burst < 1 {
		burst = 1
	}

	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return c
}

// Post sends a JSON body and returns the reply body. The request ends at the
// context deadline, or after timeout when the context has none.
func (c *QueryClient) Post(ctx context.Context, url string, payload []byte, timeout time.Duration) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "vnpay: querydr rate limit")
		}
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		if timeout <= 0 {
			timeout = defaultQueryTimeout
		}
		deadline = time.Now().Add(timeout)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.SetRequestURI(url)
	req.Header.SetMethod(http.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, errors.Wrap(err, "vnpay: querydr request")
	}

	body := append([]byte(nil), resp.Body()...)

	statusCode := resp.StatusCode()
	if statusCode < 200 || statusCode > 299 {
		return nil, &TransportError{StatusCode: statusCode, Body: string(body)}
	}

	return body, nil
}

// QueryDR asks the gateway for the current status of a transaction and
// verifies the signed reply.
func (s *Service) QueryDR(ctx context.Context, requestCode, orderCode string, transactionDate time.Time, clientIP string) (*models.QueryResult, error) {
	if err := s.opts.validate(); err != nil {
		return nil, err
	}

	request := map[string]string{
		"vnp_RequestId":       s.newRequestID(),
		"vnp_Version":         Version,
		"vnp_Command":         "querydr",
		"vnp_TmnCode":         s.opts.TmnCode,
		"vnp_TxnRef":          requestCode,
		"vnp_TransactionDate": s.timestamp(transactionDate),
		"vnp_CreateDate":      s.timestamp(s.now()),
		"vnp_IpAddr":          clientIP,
		"vnp_OrderInfo":       orderCode,
	}
	request[secureHashKey] = Sign(s.opts.HashSecret, signFields(request, queryRequestFields))

	payload, err := sonic.Marshal(request)
	if err != nil {
		return nil, errors.Wrap(err, "vnpay: marshal querydr request")
	}

	url := strings.TrimRight(s.opts.APIURL, "/") + merchantPath
	body, err := s.client.Post(ctx, url, payload, s.opts.QueryTimeout)
	if err != nil {
		return nil, err
	}

	reply, err := decodeReply(body)
	if err != nil {
		return nil, err
	}

	hash, ok := reply[secureHashKey]
	if !ok {
		return nil, ErrMissingSignature
	}

	valid := Validate(hash, s.opts.HashSecret, signFields(reply, queryReplyFields))
	if !valid {
		s.logger.WarnContext(ctx, "Invalid querydr signature", slog.String("requestCode", requestCode))
	}

	vnpData := make(map[string]string, len(reply))
	for key, value := range reply {
		if name, ok := strings.CutPrefix(key, FieldPrefix); ok {
			vnpData[name] = value
		}
	}

	return &models.QueryResult{
		Result:  outcome(valid, reply["vnp_ResponseCode"], reply["vnp_TransactionStatus"]),
		VNPData: vnpData,
	}, nil
}

// signFields joins the named fields in order, using "" for missing ones.
func signFields(fields map[string]string, order []string) string {
	values := make([]string, len(order))
	for i, key := range order {
		values[i] = fields[key]
	}

	return JoinFields(values...)
}

func decodeReply(body []byte) (map[string]string, error) {
	var raw map[string]any
	if err := replyDecoder.Unmarshal(body, &raw); err != nil {
		return nil, errors.Wrap(err, "vnpay: decode querydr reply")
	}

	reply := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			reply[key] = ""
		case string:
			reply[key] = v
		case json.Number:
			reply[key] = v.String()
		default:
			reply[key] = fmt.Sprint(v)
		}
	}

	return reply, nil
}

func newRequestID() string {
	return uuid.NewString()
}
