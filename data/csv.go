package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/rollsim/market"
)

// LoadIndex reads daily index bars. Expected columns:
//
//	ts_code,trade_date,open,high,low,close
//
// Dates are yyyymmdd or yyyy-mm-dd. A header row is allowed; short or empty
// rows are skipped. The index code is taken from the first data row.
func LoadIndex(path string) (*market.Index, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	r.FieldsPerRecord = -1

	var ix *market.Index
	sawFirst := false
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if !sawFirst {
			sawFirst = true
			if isHeader(row) {
				continue
			}
		}
		if len(row) < 6 {
			continue
		}

		date, err := parseDate(row[1])
		if err != nil {
			return nil, fmt.Errorf("%s: bad trade_date %q: %w", path, row[1], err)
		}
		bar := market.IndexBar{Date: date}
		for i, dst := range []*float64{&bar.Open, &bar.High, &bar.Low, &bar.Close} {
			if *dst, err = parseFloat(row[2+i]); err != nil {
				return nil, fmt.Errorf("%s: bad value %q: %w", path, row[2+i], err)
			}
		}
		if ix == nil {
			ix = market.NewIndex(strings.TrimSpace(row[0]), "")
		}
		ix.AddBar(bar)
	}
	if ix == nil {
		return nil, fmt.Errorf("%s: no index bars", path)
	}
	return ix, nil
}

// LoadContracts reads contract definitions into the chain. Expected columns:
//
//	ts_code,fut_code,name,multiplier,list_date,delist_date
//
// Rows whose fut_code does not match the chain's are skipped.
func LoadContracts(path string, chain *market.Chain) error {
	rc, err := Open(path)
	if err != nil {
		return err
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	r.FieldsPerRecord = -1

	sawFirst := false
	n := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if !sawFirst {
			sawFirst = true
			if isHeader(row) {
				continue
			}
		}
		if len(row) < 6 {
			continue
		}
		if strings.TrimSpace(row[1]) != chain.FutCode {
			continue
		}

		mult, err := parseFloat(row[3])
		if err != nil {
			return fmt.Errorf("%s: bad multiplier %q: %w", path, row[3], err)
		}
		list, err := parseDate(row[4])
		if err != nil {
			return fmt.Errorf("%s: bad list_date %q: %w", path, row[4], err)
		}
		delist, err := parseDate(row[5])
		if err != nil {
			return fmt.Errorf("%s: bad delist_date %q: %w", path, row[5], err)
		}

		c := market.NewContract(strings.TrimSpace(row[0]), chain.FutCode, mult, list, delist)
		c.Name = strings.TrimSpace(row[2])
		chain.Add(c)
		n++
	}
	if n == 0 {
		return fmt.Errorf("%s: no contracts for %s", path, chain.FutCode)
	}
	return nil
}

// LoadBars reads daily futures bars onto the chain's contracts. Expected
// columns:
//
//	ts_code,trade_date,open,high,low,close,settle,pre_settle,vol,amount,oi
//
// Rows for contracts not in the chain are skipped.
func LoadBars(path string, chain *market.Chain) error {
	rc, err := Open(path)
	if err != nil {
		return err
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	r.FieldsPerRecord = -1

	sawFirst := false
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if !sawFirst {
			sawFirst = true
			if isHeader(row) {
				continue
			}
		}
		if len(row) < 11 {
			continue
		}

		c, ok := chain.Contract(strings.TrimSpace(row[0]))
		if !ok {
			continue
		}
		date, err := parseDate(row[1])
		if err != nil {
			return fmt.Errorf("%s: bad trade_date %q: %w", path, row[1], err)
		}
		bar := market.FuturesBar{Date: date}
		fields := []*float64{
			&bar.Open, &bar.High, &bar.Low, &bar.Close,
			&bar.Settle, &bar.PreSettle, &bar.Volume, &bar.Amount, &bar.OpenInterest,
		}
		for i, dst := range fields {
			if *dst, err = parseFloat(row[2+i]); err != nil {
				return fmt.Errorf("%s: bad value %q: %w", path, row[2+i], err)
			}
		}
		c.AddBar(bar)
	}
	return nil
}

// LoadChain builds a complete chain from the three data files.
func LoadChain(futCode, indexFile, contractsFile, barsFile string) (*market.Chain, error) {
	ix, err := LoadIndex(indexFile)
	if err != nil {
		return nil, err
	}
	chain := market.NewChain(futCode, ix)
	if err := LoadContracts(contractsFile, chain); err != nil {
		return nil, err
	}
	if err := LoadBars(barsFile, chain); err != nil {
		return nil, err
	}
	return chain, nil
}

func isHeader(row []string) bool {
	return len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "ts_code")
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"20060102", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return market.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
