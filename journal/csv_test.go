package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/rollsim/market"
	"github.com/rustyeddy/rollsim/sim"
)

func TestCSVJournalRoundTrip(t *testing.T) {
	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	navPath := filepath.Join(dir, "nav.csv")

	j, err := NewCSV(tradesPath, navPath)
	require.NoError(t, err)

	date := market.MustDate(2024, 1, 5)
	require.NoError(t, j.RecordTrade("run-1", sim.TradeRecord{
		Date:       date,
		Contract:   "IC2401.CFX",
		Volume:     10,
		Price:      5000,
		Amount:     10_000_000,
		Commission: 2300,
		Reason:     sim.ReasonOpen,
	}))
	require.NoError(t, j.RecordNAV("run-1", NAVRecord{
		Date: date, NAV: 1.0, Equity: 10_000_000, Cash: 10_000_000, RequiredMargin: 1_200_000,
	}))
	require.NoError(t, j.Close())

	tf, err := os.Open(tradesPath)
	require.NoError(t, err)
	defer tf.Close()

	rows, err := csv.NewReader(tf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2, "header plus one trade")
	assert.Equal(t, "run-1", rows[1][0])
	assert.Equal(t, "2024-01-05", rows[1][1])
	assert.Equal(t, "IC2401.CFX", rows[1][2])
	assert.Equal(t, "10", rows[1][3])
	assert.Equal(t, "OPEN", rows[1][8])

	nf, err := os.Open(navPath)
	require.NoError(t, err)
	defer nf.Close()

	rows, err = csv.NewReader(nf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1.000000", rows[1][2])
}
