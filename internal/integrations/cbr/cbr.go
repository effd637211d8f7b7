package cbr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/fintrack/internal/config"
	"github.com/Dan9191/fintrack/internal/interfaces"
	"github.com/Dan9191/fintrack/internal/models"
	"github.com/Dan9191/fintrack/internal/utils"
)

var trendThreshold = decimal.RequireFromString("0.02")

// Spreads are added to the key rate to obtain each category benchmark
type Spreads struct {
	Home         decimal.Decimal
	Personal     decimal.Decimal
	Car          decimal.Decimal
	FixedDeposit decimal.Decimal
}

// CBRClient derives loan benchmarks from the Central Bank key rate
type CBRClient struct {
	url       string
	client    *http.Client
	log       *logrus.Logger
	spreads   Spreads
	insurance models.InsuranceBenchmarks
	cache     interfaces.BenchmarkCache
	now       utils.Clock
}

var _ interfaces.BenchmarkProvider = (*CBRClient)(nil)

// NewCBRClient initializes a new CBR client; cache may be nil
func NewCBRClient(cfg *config.Config, log *logrus.Logger, cache interfaces.BenchmarkCache) *CBRClient {
	return &CBRClient{
		url: cfg.CBRURL,
		client: &http.Client{
			Timeout: cfg.SourceTimeout,
		},
		log: log,
		spreads: Spreads{
			Home:         cfg.SpreadHome,
			Personal:     cfg.SpreadPersonal,
			Car:          cfg.SpreadCar,
			FixedDeposit: cfg.SpreadFD,
		},
		insurance: models.InsuranceBenchmarks{
			TermCoverMultiplier:  cfg.TermCoverMultiplier,
			TermPremiumPerCrore:  decimal.NewFromInt(12000),
			HealthBaseCover:      decimal.NewFromInt(500000),
			FamilyFloaterPremium: decimal.NewFromInt(18000),
		},
		cache: cache,
		now:   time.Now,
	}
}

// buildSOAPRequest creates a SOAP request for the key rate of the last 30 days
func (c *CBRClient) buildSOAPRequest() string {
	now := c.now()
	fromDate := now.AddDate(0, 0, -30).Format(utils.DateLayout)
	toDate := now.Format(utils.DateLayout)
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

// sendRequest sends SOAP request to CBR
func (c *CBRClient) sendRequest(ctx context.Context, soapRequest string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBufferString(soapRequest))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", "http://web.cbr.ru/KeyRate")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: cbr request failed: %v", models.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: cbr returned status %d", models.ErrSourceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read cbr response: %v", models.ErrSourceUnavailable, err)
	}

	c.log.Debugf("CBR XML response: %s", string(body))
	return body, nil
}

type keyRatePoint struct {
	date time.Time
	rate decimal.Decimal
}

// parseXMLResponse extracts key rate points, newest first
func parseXMLResponse(rawBody []byte) ([]keyRatePoint, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return nil, fmt.Errorf("%w: failed to parse XML: %v", models.ErrSourceUnavailable, err)
	}

	krElements := doc.FindElements("//diffgram/KeyRate/KR")
	if len(krElements) == 0 {
		return nil, fmt.Errorf("%w: no key rate data found in XML", models.ErrSourceUnavailable)
	}

	points := make([]keyRatePoint, 0, len(krElements))
	for _, kr := range krElements {
		rateElement := kr.FindElement("./Rate")
		if rateElement == nil {
			return nil, fmt.Errorf("%w: rate element not found in XML", models.ErrSourceUnavailable)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(rateElement.Text()))
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse rate: %v", models.ErrSourceUnavailable, err)
		}
		p := keyRatePoint{rate: rate}
		if dt := kr.FindElement("./DT"); dt != nil {
			p.date, _ = time.Parse(time.RFC3339, strings.TrimSpace(dt.Text()))
		}
		points = append(points, p)
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].date.After(points[j].date)
	})
	return points, nil
}

// KeyRate returns the latest key rate and the one before it.
// With a single observation both values are equal.
func (c *CBRClient) KeyRate(ctx context.Context) (latest, previous decimal.Decimal, err error) {
	body, err := c.sendRequest(ctx, c.buildSOAPRequest())
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	points, err := parseXMLResponse(body)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	latest, previous = points[0].rate, points[0].rate
	if len(points) > 1 {
		previous = points[1].rate
	}
	return latest, previous, nil
}

// TrendOf classifies the move between two observations
func TrendOf(latest, previous decimal.Decimal) models.Trend {
	delta := latest.Sub(previous)
	switch {
	case delta.GreaterThan(trendThreshold):
		return models.TrendRising
	case delta.LessThan(trendThreshold.Neg()):
		return models.TrendFalling
	}
	return models.TrendStable
}

// LoanBenchmarks returns per-category market rates, served from cache when possible
func (c *CBRClient) LoanBenchmarks(ctx context.Context) (*models.LoanBenchmarks, error) {
	if c.cache != nil {
		cached, err := c.cache.GetLoanBenchmarks(ctx)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			c.log.Warnf("Benchmark cache read failed: %v", err)
		}
	}

	latest, previous, err := c.KeyRate(ctx)
	if err != nil {
		return nil, err
	}
	trend := TrendOf(latest, previous)
	bench := func(spread decimal.Decimal) models.RateBenchmark {
		return models.RateBenchmark{Rate: latest.Add(spread).Round(2), Trend: trend}
	}
	out := &models.LoanBenchmarks{
		KeyRate:      latest,
		Home:         bench(c.spreads.Home),
		Personal:     bench(c.spreads.Personal),
		Car:          bench(c.spreads.Car),
		FixedDeposit: bench(c.spreads.FixedDeposit),
		AsOf:         c.now().UTC(),
	}
	c.log.Infof("Retrieved key rate: %s%% (%s)", latest.StringFixed(2), trend)

	if c.cache != nil {
		if err := c.cache.SetLoanBenchmarks(ctx, out); err != nil {
			c.log.Warnf("Benchmark cache write failed: %v", err)
		}
	}
	return out, nil
}

// InsuranceBenchmarks returns the static coverage and premium references
func (c *CBRClient) InsuranceBenchmarks() models.InsuranceBenchmarks {
	return c.insurance
}
