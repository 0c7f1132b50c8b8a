// Package rates fetches daily foreign-exchange reference rates from the
// ECB XML feed.
package rates

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/beevik/etree"
	"github.com/finwise/finance-service/internal/config"
	"github.com/sirupsen/logrus"
)

// Client retrieves and caches the ECB daily reference rates. All rates are
// quoted against EUR.
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger

	mu        sync.Mutex
	rates     map[string]float64
	fetchedAt time.Time
}

// NewClient initializes a new rates client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.RatesURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// fetch downloads the raw XML feed
func (c *Client) fetch() ([]byte, error) {
	req, err := http.NewRequest("GET", c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	c.log.Debugf("ECB XML response: %d bytes", len(body))

	return body, nil
}

// parseXML extracts the currency/rate pairs from the feed
func (c *Client) parseXML(rawBody []byte) (map[string]float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %v", err)
	}

	cubes := doc.FindElements("//Cube/Cube/Cube")
	if len(cubes) == 0 {
		return nil, fmt.Errorf("no rate data found in XML")
	}

	rates := map[string]float64{"EUR": 1.0}
	for _, cube := range cubes {
		currency := cube.SelectAttrValue("currency", "")
		rateStr := cube.SelectAttrValue("rate", "")
		if currency == "" || rateStr == "" {
			continue
		}
		rate, err := strconv.ParseFloat(rateStr, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rate for %s: %v", currency, err)
		}
		rates[currency] = rate
	}

	return rates, nil
}

// Rates returns the latest reference rates, refreshing the feed at most once
// per hour.
func (c *Client) Rates() (map[string]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rates != nil && time.Since(c.fetchedAt) < time.Hour {
		return c.rates, nil
	}

	body, err := c.fetch()
	if err != nil {
		if c.rates != nil {
			c.log.Warnf("Rate refresh failed, serving stale rates: %v", err)
			return c.rates, nil
		}
		return nil, err
	}

	rates, err := c.parseXML(body)
	if err != nil {
		return nil, err
	}

	c.rates = rates
	c.fetchedAt = time.Now()
	c.log.Infof("Retrieved %d reference rates", len(rates))
	return rates, nil
}

// Rate returns how many units of the given currency one euro buys.
func (c *Client) Rate(currency string) (float64, error) {
	rates, err := c.Rates()
	if err != nil {
		return 0, err
	}
	rate, ok := rates[currency]
	if !ok {
		return 0, fmt.Errorf("no rate for currency %s", currency)
	}
	return rate, nil
}
