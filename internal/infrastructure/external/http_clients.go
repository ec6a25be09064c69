// Package external 提供外部协作方接口的 HTTP 客户端实现
// 基础地址与超时来自配置，所有调用走 JSON
package external

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trade_chat_server/internal/config"
	"trade_chat_server/internal/service/external"
	"trade_chat_server/pkg/errorx"
)

// Clients 聚合全部外部客户端
type Clients struct {
	Profile     external.ProfileDirectory
	Attachments external.Attachments
	Trade       external.TradeEngine
}

// NewClients 根据配置创建外部客户端集合
func NewClients(conf *config.ExternalConfig) *Clients {
	timeout := time.Duration(conf.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}
	return &Clients{
		Profile:     &profileClient{baseURL: strings.TrimSuffix(conf.ProfileBaseURL, "/"), client: httpClient},
		Attachments: &attachmentClient{baseURL: strings.TrimSuffix(conf.AttachmentBaseURL, "/"), client: httpClient},
		Trade:       &tradeClient{baseURL: strings.TrimSuffix(conf.TradeBaseURL, "/"), client: httpClient},
	}
}

// doJSON 执行请求并将响应解码到 out
// 非 2xx 响应映射为 CodeDependencyError，404 映射为 CodeNotFound
func doJSON(ctx context.Context, client *http.Client, method, rawURL string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errorx.Wrapf(err, errorx.CodeDependencyError, "encode request %s", rawURL)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeDependencyError, "build request %s", rawURL)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeDependencyError, "call %s", rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errorx.Newf(errorx.CodeNotFound, "%s returned 404", rawURL)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorx.Newf(errorx.CodeDependencyError, "%s returned status %d", rawURL, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errorx.Wrapf(err, errorx.CodeDependencyError, "decode response %s", rawURL)
		}
	}
	return nil
}

// ==================== 资料服务 ====================

type profileClient struct {
	baseURL string
	client  *http.Client
}

func (p *profileClient) GetCustomer(ctx context.Context, customerId string) (*external.Customer, error) {
	var customer external.Customer
	rawURL := fmt.Sprintf("%s/customers/%s", p.baseURL, url.PathEscape(customerId))
	if err := doJSON(ctx, p.client, http.MethodGet, rawURL, nil, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (p *profileClient) GetCustomers(ctx context.Context, customerIds []string) (map[string]*external.Customer, error) {
	var customers []external.Customer
	rawURL := p.baseURL + "/customers/batch"
	body := map[string][]string{"customer_ids": customerIds}
	if err := doJSON(ctx, p.client, http.MethodPost, rawURL, body, &customers); err != nil {
		return nil, err
	}
	result := make(map[string]*external.Customer, len(customers))
	for i := range customers {
		result[customers[i].CustomerId] = &customers[i]
	}
	return result, nil
}

// ==================== 附件服务 ====================

type attachmentClient struct {
	baseURL string
	client  *http.Client
}

func (a *attachmentClient) Store(ctx context.Context, filename string, data []byte) (*external.AttachmentDescriptor, error) {
	var descriptor external.AttachmentDescriptor
	rawURL := a.baseURL + "/attachments"
	body := map[string]string{
		"filename": filename,
		"file":     base64.StdEncoding.EncodeToString(data),
	}
	if err := doJSON(ctx, a.client, http.MethodPost, rawURL, body, &descriptor); err != nil {
		return nil, err
	}
	return &descriptor, nil
}

// ==================== 交易引擎 ====================

type tradeClient struct {
	baseURL string
	client  *http.Client
}

func (t *tradeClient) OpenTrade(ctx context.Context, req external.OpenTradeRequest) (*external.Trade, error) {
	var trade external.Trade
	rawURL := t.baseURL + "/trades"
	if err := doJSON(ctx, t.client, http.MethodPost, rawURL, req, &trade); err != nil {
		return nil, err
	}
	return &trade, nil
}

func (t *tradeClient) GetTrade(ctx context.Context, tradeHash string) (*external.Trade, error) {
	var trade external.Trade
	rawURL := fmt.Sprintf("%s/trades/%s", t.baseURL, url.PathEscape(tradeHash))
	if err := doJSON(ctx, t.client, http.MethodGet, rawURL, nil, &trade); err != nil {
		return nil, err
	}
	return &trade, nil
}

func (t *tradeClient) ListTrades(ctx context.Context, customerId string) ([]external.Trade, error) {
	var trades []external.Trade
	rawURL := fmt.Sprintf("%s/trades?customer_id=%s", t.baseURL, url.QueryEscape(customerId))
	if err := doJSON(ctx, t.client, http.MethodGet, rawURL, nil, &trades); err != nil {
		return nil, err
	}
	return trades, nil
}
