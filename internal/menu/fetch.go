package menu

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"canteen-backend/internal/assert"
	"canteen-backend/internal/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const (
	report_fetcher_fetch = "fetcher.fetch"
)

const DefaultMenuUrl = "https://zse.edu.pl/kantyna/"

var tracer = otel.Tracer("canteen.internal.menu")

type FetcherOptions struct {
	Url     string
	Timeout time.Duration
	// MinInterval spaces out consecutive requests to the menu page, 0 disables it.
	MinInterval      time.Duration
	CloudflareBypass bool
	UserAgent        string
}

// Fetcher retrieves the menu page.
type Fetcher struct {
	url  string
	http *resty.Client
	tel  telemetry.API
}

func NewFetcher(opts FetcherOptions, tel telemetry.API) Fetcher {
	assert.NotNil(tel, "telemetry")
	tel = telemetry.NewScopedAPI("menu_fetcher", tel)

	if opts.Url == "" {
		opts.Url = DefaultMenuUrl
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Second * 30
	}

	client := resty.New()
	client.SetTimeout(opts.Timeout)
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	if opts.UserAgent != "" {
		client.SetHeader("user-agent", opts.UserAgent)
	}

	if opts.MinInterval > 0 {
		limiter := rate.NewLimiter(rate.Every(opts.MinInterval), 1)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(client, tel)

	return Fetcher{
		url:  opts.Url,
		http: client,
		tel:  tel,
	}
}

// Fetch performs a single GET of the menu page, it does not retry.
func (f Fetcher) Fetch(ctx context.Context) (*goquery.Document, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("url", f.url))

	fail := func(err error) (*goquery.Document, error) {
		f.tel.ReportBroken(report_fetcher_fetch, err, f.url)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, &FetchError{Url: f.url, Err: err}
	}

	res, err := f.http.R().
		SetContext(ctx).
		Get(f.url)
	if err != nil {
		return fail(err)
	}
	if !res.IsSuccess() {
		return fail(fmt.Errorf("%w: %s", ErrBadStatus, res.Status()))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return fail(fmt.Errorf("parse html: %w", err))
	}
	f.tel.ReportDebug("fetched menu page", f.url, len(res.Body()))
	return doc, nil
}
