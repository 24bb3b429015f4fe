package cmd

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"stock-journal/database"
	"stock-journal/models"
	"stock-journal/report"
)

type importOptions struct {
	username  string
	file      string
	batchSize int
}

func NewImportCommand() *cobra.Command {
	opts := &importOptions{}
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import trades for a user from a CSV file",
		Long: "Import trades from a CSV file with the header\n" +
			"date,code,name,type,quantity,price,thought\n" +
			"Either every row is imported or none is.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.username, "user", "u", "", "owner of the imported trades")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "CSV file to read")
	cmd.Flags().IntVar(&opts.batchSize, "batch", 100, "rows per insert")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runImport(cmd *cobra.Command, opts *importOptions) error {
	f, err := os.Open(opts.file)
	if err != nil {
		return err
	}
	defer f.Close()

	trades, err := readTrades(f)
	if err != nil {
		return fmt.Errorf("%s: %w", opts.file, err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, closeDB, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	cache, _, closeShared, err := openShared(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeShared()

	u, err := importTrades(cmd.Context(), store, cache, opts.username, trades, opts.batchSize)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"username": u.Username, "trades": len(trades)}).Info("trades imported")
	return nil
}

// importTrades stores trades for username and drops the user's cached
// reports. cache may be nil.
func importTrades(ctx context.Context, store *database.Store, cache report.Cache, username string, trades []models.Trade, batchSize int) (*models.User, error) {
	u, err := store.FindUserByName(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", username, err)
	}
	if err := store.ImportTrades(ctx, u.ID, trades, batchSize); err != nil {
		return nil, err
	}
	if cache != nil {
		if err := cache.Invalidate(ctx, u.ID); err != nil {
			log.WithFields(log.Fields{"user_id": u.ID}).WithError(err).Warn("report cache invalidation failed")
		}
	}
	return u, nil
}

var csvHeader = []string{"date", "code", "name", "type", "quantity", "price", "thought"}

// readTrades parses trade rows. Amounts are left for the store to compute.
func readTrades(r io.Reader) ([]models.Trade, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty file")
	}
	if err != nil {
		return nil, err
	}
	for i, name := range csvHeader {
		if strings.ToLower(strings.TrimSpace(header[i])) != name {
			return nil, fmt.Errorf("column %d: expected %q, got %q", i+1, name, header[i])
		}
	}

	var trades []models.Trade
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(rec[0]), time.UTC)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date %q", line, rec[0])
		}
		qty, err := strconv.ParseInt(strings.TrimSpace(rec[4]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid quantity %q", line, rec[4])
		}
		price, err := decimal.NewFromString(strings.TrimSpace(rec[5]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid price %q", line, rec[5])
		}

		trades = append(trades, models.Trade{
			TradeDate: date,
			StockCode: strings.TrimSpace(rec[1]),
			StockName: strings.TrimSpace(rec[2]),
			TradeType: models.TradeType(strings.ToLower(strings.TrimSpace(rec[3]))),
			Quantity:  qty,
			Price:     price,
			Thought:   rec[6],
		})
	}
	return trades, nil
}
