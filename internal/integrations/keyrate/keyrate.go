// Package keyrate reads the central bank key rate from a SOAP feed. The
// rate is informational: it is shown next to the loan catalog so operators
// can compare product rates with the benchmark.
package keyrate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"
)

// Rate is one published key rate
type Rate struct {
	Date    time.Time `json:"date"`
	Percent float64   `json:"keyRate"`
}

// Client handles the key rate SOAP integration
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
	now    func() time.Time
}

// NewClient initializes a new key rate client
func NewClient(url string, log *logrus.Logger) *Client {
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
		now: time.Now,
	}
}

// buildSOAPRequest asks for the last 30 days of rates
func (c *Client) buildSOAPRequest() string {
	now := c.now()
	fromDate := now.AddDate(0, 0, -30).Format("2006-01-02")
	toDate := now.Format("2006-01-02")
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
		<soap12:Envelope xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">
			<soap12:Body>
				<KeyRate xmlns="http://web.cbr.ru/">
					<fromDate>%s</fromDate>
					<ToDate>%s</ToDate>
				</KeyRate>
			</soap12:Body>
		</soap12:Envelope>`, fromDate, toDate)
}

func (c *Client) sendRequest(ctx context.Context, soapRequest string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBufferString(soapRequest))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", "http://web.cbr.ru/KeyRate")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	c.log.Debugf("Key rate XML response: %s", string(body))
	return body, nil
}

// parseXMLResponse extracts the most recent rate; the feed lists newest first
func parseXMLResponse(rawBody []byte) (Rate, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return Rate{}, fmt.Errorf("failed to parse XML: %w", err)
	}

	krElements := doc.FindElements("//KeyRate/KR")
	if len(krElements) == 0 {
		return Rate{}, fmt.Errorf("no key rate data found in XML")
	}
	latest := krElements[0]

	rateElement := latest.FindElement("./Rate")
	if rateElement == nil {
		return Rate{}, fmt.Errorf("rate element not found in XML")
	}
	percent, err := strconv.ParseFloat(strings.TrimSpace(rateElement.Text()), 64)
	if err != nil {
		return Rate{}, fmt.Errorf("failed to parse rate: %w", err)
	}

	rate := Rate{Percent: percent}
	if dt := latest.FindElement("./DT"); dt != nil {
		if d, err := time.Parse(time.RFC3339, strings.TrimSpace(dt.Text())); err == nil {
			rate.Date = d
		}
	}
	return rate, nil
}

// GetKeyRate retrieves the latest key rate
func (c *Client) GetKeyRate(ctx context.Context) (Rate, error) {
	body, err := c.sendRequest(ctx, c.buildSOAPRequest())
	if err != nil {
		return Rate{}, err
	}
	rate, err := parseXMLResponse(body)
	if err != nil {
		return Rate{}, err
	}
	c.log.Infof("Retrieved key rate: %.2f%%", rate.Percent)
	return rate, nil
}
