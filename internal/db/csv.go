package db

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"mt5-bridge/internal/types"
)

// ReadParticipantsCSV loads participant rows from a CSV file with a
// header line (account_id, investor_password, server, nickname). Rows
// without an account id are skipped, matching how the hosted table is
// filtered before syncing. The autotrade tool uses this as its account
// source so it can run without database access.
func ReadParticipantsCSV(path string) ([]types.Participant, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		// Tolerate a UTF-8 BOM on the first column.
		col[strings.TrimPrefix(strings.TrimSpace(name), "\uFEFF")] = i
	}
	idIdx, ok := col["account_id"]
	if !ok {
		return nil, fmt.Errorf("csv %s has no account_id column", path)
	}

	var out []types.Participant
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		accountID, err := strconv.ParseInt(strings.TrimSpace(rec[idIdx]), 10, 64)
		if err != nil || accountID == 0 {
			continue
		}

		p := types.Participant{AccountID: accountID}
		if i, ok := col["nickname"]; ok && i < len(rec) {
			p.Nickname = rec[i]
		}
		if i, ok := col["investor_password"]; ok && i < len(rec) {
			p.InvestorPassword = rec[i]
		}
		if i, ok := col["server"]; ok && i < len(rec) {
			p.Server = rec[i]
		}
		out = append(out, p)
	}
	return out, nil
}
