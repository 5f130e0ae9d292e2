//go:build lambda

package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/tidwall/gjson"

	"github.com/tonyliqx/nightreign-relic-manager/internal/catalog"
	"github.com/tonyliqx/nightreign-relic-manager/internal/finder"
	"github.com/tonyliqx/nightreign-relic-manager/internal/inventory"
	"github.com/tonyliqx/nightreign-relic-manager/internal/platform/config"
	"github.com/tonyliqx/nightreign-relic-manager/internal/platform/otel"
)

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

var (
	lambdaCfg Config
	lambdaCat *catalog.Catalog
)

type searchResponse struct {
	SearchOutput
	Imported int `json:"imported"`
	Dropped  int `json:"dropped"`
	// Partial is set when the invocation deadline cut the search short.
	Partial bool `json:"partial,omitempty"`
}

// handler accepts
//
//	{"nightfarer": "wylder", "required": ["name", "name*2"], "avoided": [...],
//	 "maxResults": 100, "query": "nightfarer=...", "inventory": {"normalRelics": [...], "depthRelics": [...]}}
//
// where query, when present, is read first and the other fields extend it.
func handler(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	// The runtime is frozen between invocations, so buffered spans go out now.
	defer flushSpans()

	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(400, "invalid base64 body")
		}
		body = string(decoded)
	}
	if !gjson.Valid(body) {
		return errResp(400, "invalid JSON")
	}
	req := gjson.Parse(body)
	if !req.Get("inventory").IsObject() {
		return errResp(400, "missing inventory field")
	}

	q, err := requestQuery(req)
	if err != nil {
		return errResp(400, err.Error())
	}

	inv, stats := inventory.FromJSON(req.Get("inventory"), lambdaCat.Vocabulary())
	out, err := finder.Run(ctx, lambdaCat, inv.All(), q, finder.Options{CheckpointEvery: lambdaCfg.CheckpointEvery})
	partial := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
	switch {
	case errors.Is(err, finder.ErrInvalidQuery):
		return errResp(400, err.Error())
	case errors.Is(err, catalog.ErrUnknownNightfarer):
		return errResp(404, err.Error())
	case err != nil && !partial:
		return errResp(500, err.Error())
	}

	resp := searchResponse{
		SearchOutput: toOutput(out),
		Imported:     stats.Imported,
		Dropped:      stats.Dropped,
		Partial:      partial,
	}
	respJSON, _ := json.Marshal(resp)
	return events.LambdaFunctionURLResponse{StatusCode: 200, Headers: jsonHeader, Body: string(respJSON)}, nil
}

func requestQuery(req gjson.Result) (finder.Query, error) {
	var q finder.Query
	if raw := req.Get("query").String(); raw != "" {
		var err error
		if q, err = finder.ParseQueryString(raw); err != nil {
			return finder.Query{}, err
		}
	}
	if nf := req.Get("nightfarer").String(); nf != "" {
		q.Nightfarer = nf
	}
	if q.Nightfarer == "" {
		q.Nightfarer = lambdaCfg.Nightfarer
	}

	var err error
	req.Get("required").ForEach(func(_, v gjson.Result) bool {
		r, perr := finder.ParseRequirement(v.String())
		if perr != nil {
			err = perr
			return false
		}
		q.Required = append(q.Required, r)
		return true
	})
	if err != nil {
		return finder.Query{}, err
	}
	req.Get("avoided").ForEach(func(_, v gjson.Result) bool {
		q.Avoided = append(q.Avoided, v.String())
		return true
	})

	if m := req.Get("maxResults"); m.Exists() {
		q.MaxResults = int(m.Int())
	}
	if q.MaxResults == 0 {
		q.MaxResults = lambdaCfg.MaxResults
	}
	return q, nil
}

func flushSpans() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := otel.Flush(ctx); err != nil {
		fmt.Fprintf(logw(), "[otel] flush: %v\n", err)
	}
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func main() {
	var err error
	if lambdaCfg, err = loadConfig(); err != nil {
		config.Exitf("error: %v", err)
	}
	if lambdaCat, err = catalog.LoadFile(lambdaCfg.CatalogPath); err != nil {
		config.Exitf("error: %v", err)
	}
	settings, err := otel.SettingsFromEnv()
	if err != nil {
		config.Exitf("error: %v", err)
	}
	if _, err := otel.Setup(context.Background(), serviceName+"-lambda", settings); err != nil {
		fmt.Fprintf(logw(), "[otel] %v\n", err)
	}
	lambda.Start(handler)
}
