package profitbot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// Default currencies of the original deployment: unit costs are kept in US
// dollars, revenue and reports are in Kyrgyz som.
const (
	DefaultSourceCurrency = "USD"
	DefaultTargetCurrency = "KGS"
)

// open.er-api.com serves daily reference rates as a single JSON document per
// base currency, no API key required.
const rateEndpoint = "https://open.er-api.com/v6/latest/%s"

// FetchRate retrieves the latest source to target exchange rate from the
// public reference-rate API.
func FetchRate(client *http.Client, source, target string) (decimal.Decimal, error) {
	addr := fmt.Sprintf(rateEndpoint, url.PathEscape(source))
	return fetchRate(client, addr, source, target)
}

func fetchRate(client *http.Client, addr, source, target string) (decimal.Decimal, error) {
	var jobj any
	if err := jwget(client, addr, &jobj); err != nil {
		return decimal.Zero, fmt.Errorf("error in wget %q/%q: %w", source, target, err)
	}

	path := fmt.Sprintf("$.rates.%s", target)
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error parsing %q/%q: %q %w", source, target, path, err)
	}
	// because jsonpath is never clear about whether it returns a list of 1
	// answer, or a single answer: by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}

	val, ok := jval.(float64)
	if !ok {
		return decimal.Zero, fmt.Errorf("error parsing %q/%q: %q %s %v", source, target, path, "not a float", jval)
	}
	return decimal.NewFromFloat(val), nil
}

// jwget performs an HTTP GET request and unmarshals the JSON response into
// the provided data structure.
func jwget(client *http.Client, addr string, data interface{}) error {
	resp, err := client.Get(addr)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	_, err = io.Copy(&buf, resp.Body)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return json.Unmarshal(buf.Bytes(), data)
}
