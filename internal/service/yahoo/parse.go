package yahoo

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"SwingArrow/internal/domain/models"
)

// optFloat reads a numeric field. Yahoo sends plain numbers on the quote and
// chart endpoints and {"raw":..,"fmt":..} objects on quoteSummary; null, {}
// and strings are treated as absent.
func optFloat(r gjson.Result) *float64 {
	if r.IsObject() {
		r = r.Get("raw")
	}
	if r.Type != gjson.Number {
		return nil
	}
	v := r.Float()
	return &v
}

// upstreamError extracts {"error":{"code":..,"description":..}} from an
// endpoint envelope.
func upstreamError(env gjson.Result) error {
	e := env.Get("error")
	if !e.Exists() || e.Type == gjson.Null {
		return nil
	}
	code := e.Get("code").String()
	desc := e.Get("description").String()
	if code == "Not Found" {
		return fmt.Errorf("%w: %s", ErrNotFound, desc)
	}
	return fmt.Errorf("%w: %s: %s", ErrUpstream, code, desc)
}

func parseQuote(symbol string, body []byte) (models.Quote, error) {
	if !gjson.ValidBytes(body) {
		return models.Quote{}, fmt.Errorf("%w: quote body is not json", ErrMalformed)
	}
	env := gjson.GetBytes(body, "quoteResponse")
	if !env.Exists() {
		return models.Quote{}, fmt.Errorf("%w: missing quoteResponse", ErrMalformed)
	}
	if err := upstreamError(env); err != nil {
		return models.Quote{}, err
	}
	res := env.Get("result")
	if !res.IsArray() || len(res.Array()) == 0 {
		return models.Quote{}, fmt.Errorf("%w: quote %s", ErrNotFound, symbol)
	}
	q := res.Array()[0]

	name := q.Get("shortName").String()
	if name == "" {
		name = q.Get("longName").String()
	}
	sym := q.Get("symbol").String()
	if sym == "" {
		sym = symbol
	}
	return models.Quote{
		Symbol:           sym,
		Name:             name,
		Price:            optFloat(q.Get("regularMarketPrice")),
		Change:           optFloat(q.Get("regularMarketChange")),
		ChangePercent:    optFloat(q.Get("regularMarketChangePercent")),
		Volume:           optFloat(q.Get("regularMarketVolume")),
		AverageVolume:    optFloat(q.Get("averageDailyVolume3Month")),
		FiftyTwoWeekHigh: optFloat(q.Get("fiftyTwoWeekHigh")),
		FiftyTwoWeekLow:  optFloat(q.Get("fiftyTwoWeekLow")),
	}, nil
}

func parseFundamentals(symbol string, body []byte) (models.Fundamentals, error) {
	if !gjson.ValidBytes(body) {
		return models.Fundamentals{}, fmt.Errorf("%w: quoteSummary body is not json", ErrMalformed)
	}
	env := gjson.GetBytes(body, "quoteSummary")
	if !env.Exists() {
		return models.Fundamentals{}, fmt.Errorf("%w: missing quoteSummary", ErrMalformed)
	}
	if err := upstreamError(env); err != nil {
		return models.Fundamentals{}, err
	}
	res := env.Get("result")
	if !res.IsArray() || len(res.Array()) == 0 {
		return models.Fundamentals{}, fmt.Errorf("%w: quoteSummary %s", ErrNotFound, symbol)
	}
	r := res.Array()[0]
	fd := r.Get("financialData")
	ks := r.Get("defaultKeyStatistics")
	sd := r.Get("summaryDetail")

	fpe := optFloat(ks.Get("forwardPE"))
	if fpe == nil {
		fpe = optFloat(sd.Get("forwardPE"))
	}
	return models.Fundamentals{
		CurrentPrice:     optFloat(fd.Get("currentPrice")),
		FiftyTwoWeekHigh: optFloat(sd.Get("fiftyTwoWeekHigh")),
		FiftyTwoWeekLow:  optFloat(sd.Get("fiftyTwoWeekLow")),
		AverageVolume:    optFloat(sd.Get("averageVolume")),
		Volume:           optFloat(sd.Get("regularMarketVolume")),
		ForwardPE:        fpe,
		EarningsGrowth:   optFloat(fd.Get("earningsGrowth")),
		RevenueGrowth:    optFloat(fd.Get("revenueGrowth")),
		OperatingMargin:  optFloat(fd.Get("operatingMargins")),
	}, nil
}

// parseChart returns bars in ascending time order. Columns shorter than the
// timestamp column are read as nulls.
func parseChart(symbol string, body []byte) ([]models.Bar, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: chart body is not json", ErrMalformed)
	}
	env := gjson.GetBytes(body, "chart")
	if !env.Exists() {
		return nil, fmt.Errorf("%w: missing chart", ErrMalformed)
	}
	if err := upstreamError(env); err != nil {
		return nil, err
	}
	res := env.Get("result")
	if !res.IsArray() || len(res.Array()) == 0 {
		return nil, fmt.Errorf("%w: chart %s", ErrNotFound, symbol)
	}
	r := res.Array()[0]

	ts := r.Get("timestamp")
	if !ts.Exists() || ts.Type == gjson.Null {
		return []models.Bar{}, nil
	}
	if !ts.IsArray() {
		return nil, fmt.Errorf("%w: chart timestamp is not an array", ErrMalformed)
	}
	stamps := ts.Array()
	q := r.Get("indicators.quote.0")
	open := q.Get("open").Array()
	high := q.Get("high").Array()
	low := q.Get("low").Array()
	closes := q.Get("close").Array()
	vol := q.Get("volume").Array()

	at := func(col []gjson.Result, i int) *float64 {
		if i >= len(col) {
			return nil
		}
		return optFloat(col[i])
	}

	bars := make([]models.Bar, 0, len(stamps))
	for i, s := range stamps {
		bars = append(bars, models.Bar{
			Time:   time.Unix(s.Int(), 0).UTC(),
			Open:   at(open, i),
			High:   at(high, i),
			Low:    at(low, i),
			Close:  at(closes, i),
			Volume: at(vol, i),
		})
	}
	return bars, nil
}

func parseNews(body []byte, limit int) ([]models.NewsItem, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: search body is not json", ErrMalformed)
	}
	items := gjson.GetBytes(body, "news")
	out := make([]models.NewsItem, 0, limit)
	if !items.IsArray() {
		return out, nil
	}
	for _, n := range items.Array() {
		if len(out) == limit {
			break
		}
		item := models.NewsItem{
			Title:       n.Get("title").String(),
			Publisher:   n.Get("publisher").String(),
			Link:        n.Get("link").String(),
			PublishedAt: n.Get("providerPublishTime").Int(),
		}
		if u := n.Get("thumbnail.resolutions.0.url"); u.Exists() && u.String() != "" {
			s := u.String()
			item.Thumbnail = &s
		}
		out = append(out, item)
	}
	return out, nil
}
