package rates

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/finwise/finance-service/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<gesmes:Envelope xmlns:gesmes="http://www.gesmes.org/xml/2002-08-01" xmlns="http://www.ecb.int/vocabulary/2002-08-01/eurofxref">
	<gesmes:subject>Reference rates</gesmes:subject>
	<Cube>
		<Cube time="2026-08-27">
			<Cube currency="USD" rate="1.0842"/>
			<Cube currency="GBP" rate="0.8431"/>
			<Cube currency="JPY" rate="158.92"/>
		</Cube>
	</Cube>
</gesmes:Envelope>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewClient(&config.Config{RatesURL: srv.URL}, log)
}

func TestRates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(sampleFeed))
	})

	rates, err := client.Rates()
	require.NoError(t, err)
	assert.Equal(t, 1.0, rates["EUR"])
	assert.Equal(t, 1.0842, rates["USD"])
	assert.Equal(t, 0.8431, rates["GBP"])
	assert.Len(t, rates, 4)
}

func TestRatesCached(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Write([]byte(sampleFeed))
	})

	_, err := client.Rates()
	require.NoError(t, err)
	_, err = client.Rates()
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(sampleFeed))
	})

	rate, err := client.Rate("JPY")
	require.NoError(t, err)
	assert.Equal(t, 158.92, rate)

	_, err = client.Rate("XXX")
	assert.Error(t, err)
}

func TestRatesUpstreamFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Rates()
	assert.Error(t, err)
}

func TestRatesMalformedFeed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<xml>no cubes here</xml>"))
	})

	_, err := client.Rates()
	assert.Error(t, err)
}
