package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/rustyeddy/rollsim/sim"
)

type CSVJournal struct {
	trades *csv.Writer
	nav    *csv.Writer
	tf, nf *os.File
}

func NewCSV(tradesPath, navPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	nf, err := os.Create(navPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	nw := csv.NewWriter(nf)

	if err := tw.Write([]string{"run_id", "date", "contract", "volume", "price", "amount", "commission", "realized_pl", "reason"}); err != nil {
		return nil, err
	}
	if err := nw.Write([]string{"run_id", "date", "nav", "equity", "cash", "required_margin"}); err != nil {
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	nw.Flush()
	if err := nw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{trades: tw, nav: nw, tf: tf, nf: nf}, nil
}

func (j *CSVJournal) RecordTrade(runID string, t sim.TradeRecord) error {
	err := j.trades.Write([]string{
		runID,
		t.Date.Format(time.DateOnly),
		t.Contract,
		strconv.Itoa(t.Volume),
		f(t.Price),
		f(t.Amount),
		f(t.Commission),
		f(t.RealizedPL),
		t.Reason,
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordNAV(runID string, r NAVRecord) error {
	err := j.nav.Write([]string{
		runID,
		r.Date.Format(time.DateOnly),
		f(r.NAV),
		f(r.Equity),
		f(r.Cash),
		f(r.RequiredMargin),
	})
	if err != nil {
		return err
	}
	j.nav.Flush()
	return j.nav.Error()
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.nav.Flush()
	if err := j.nav.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.nf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
