// Command catalog-import streams gzipped JSON Lines supplier catalogs into the
// products table. Files in the data directory are parsed concurrently; a bloom
// filter drops duplicate product names cheaply before they reach the database,
// where the name unique constraint is the final arbiter.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/openshelf/inventory-ledger/internal/domain/product"
	"github.com/openshelf/inventory-ledger/internal/storage/postgres"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
	progressEvery = 10_000
	rowBuffer     = 1024
)

const insertCatalogProductSQL = `INSERT INTO products (id, name, slug, description, cost_price, list_price, stock, category, brand)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (name) DO NOTHING`

// catalogRow is one supplier catalog entry.
type catalogRow struct {
	Name        string
	Description string
	CostPrice   decimal.Decimal
	ListPrice   decimal.Decimal
	Stock       int
	Category    string
	Brand       string
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.jsonl.gz catalog files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("catalog import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog import completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "list catalog files")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.jsonl.gz files found in %s", dataDir)
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	slog.Info("importing catalog files", slog.Int("files", len(files)))

	rows := make(chan catalogRow, rowBuffer)

	writer, writerCtx := errgroup.WithContext(ctx)
	writer.Go(func() error {
		return writeRows(writerCtx, pool, rows)
	})

	producers, prodCtx := errgroup.WithContext(writerCtx)
	for _, f := range files {
		producers.Go(streamCatalogFile(prodCtx, f, rows))
	}

	err = producers.Wait()
	close(rows)
	if werr := writer.Wait(); err == nil {
		err = werr
	}
	return err
}

// streamCatalogFile decompresses one catalog file and sends each parsed row
// downstream.
func streamCatalogFile(ctx context.Context, path string, rows chan<- catalogRow) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer func() { _ = f.Close() }()

		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()

		var count uint64
		scanner := bufio.NewScanner(gz)
		scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			row, err := parseCatalogRow(line)
			if err != nil {
				return errors.Wrapf(err, "parse %s line %d", path, count+1)
			}

			select {
			case rows <- row:
			case <-ctx.Done():
				return ctx.Err()
			}

			count++
			if count%progressEvery == 0 {
				slog.Info("import progress",
					slog.String("file", filepath.Base(path)),
					slog.Uint64("rows", count),
				)
			}
		}
		if err := scanner.Err(); err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("file complete",
			slog.String("file", filepath.Base(path)),
			slog.Uint64("rows", count),
		)
		return nil
	}
}

// parseCatalogRow decodes one JSON Lines entry. Unknown fields are skipped so
// supplier-specific extras do not break the import.
func parseCatalogRow(line []byte) (catalogRow, error) {
	var (
		row catalogRow
		d   = jx.DecodeBytes(line)
	)
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "name":
			v, err := d.Str()
			row.Name = v
			return err
		case "description":
			v, err := d.Str()
			row.Description = v
			return err
		case "cost_price":
			return decodeDecimal(d, &row.CostPrice)
		case "list_price":
			return decodeDecimal(d, &row.ListPrice)
		case "stock":
			v, err := d.Int()
			row.Stock = v
			return err
		case "category":
			v, err := d.Str()
			row.Category = v
			return err
		case "brand":
			v, err := d.Str()
			row.Brand = v
			return err
		default:
			return d.Skip()
		}
	}); err != nil {
		return catalogRow{}, err
	}

	if row.Name == "" {
		return catalogRow{}, errors.New("missing product name")
	}
	if row.Stock < 0 {
		row.Stock = 0
	}
	return row, nil
}

// decodeDecimal accepts both JSON numbers and numeric strings.
func decodeDecimal(d *jx.Decoder, out *decimal.Decimal) error {
	var raw string
	switch d.Next() {
	case jx.String:
		v, err := d.Str()
		if err != nil {
			return err
		}
		raw = v
	default:
		n, err := d.Num()
		if err != nil {
			return err
		}
		raw = n.String()
	}

	v, err := decimal.NewFromString(raw)
	if err != nil {
		return errors.Wrapf(err, "parse decimal %q", raw)
	}
	*out = v
	return nil
}

// writeRows is the single consumer: it dedupes names through a bloom filter
// and inserts the rest, leaving existing products untouched.
func writeRows(ctx context.Context, pool *pgxpool.Pool, rows <-chan catalogRow) error {
	seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)

	var inserted, skipped uint64
	for row := range rows {
		if seen.TestString(row.Name) {
			skipped++
			continue
		}
		seen.AddString(row.Name)

		tag, err := pool.Exec(ctx, insertCatalogProductSQL,
			uuid.New().String(), row.Name, product.Slugify(row.Name), row.Description,
			row.CostPrice, row.ListPrice, row.Stock, row.Category, row.Brand,
		)
		if err != nil {
			return errors.Wrapf(err, "insert product %s", row.Name)
		}
		if tag.RowsAffected() == 0 {
			skipped++
			continue
		}

		inserted++
		if inserted%progressEvery == 0 {
			slog.Info("write progress", slog.Uint64("inserted", inserted))
		}
	}

	slog.Info("write complete",
		slog.Uint64("inserted", inserted),
		slog.Uint64("skipped", skipped),
	)
	return nil
}
