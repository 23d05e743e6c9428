// Command seed-db prepares a database for local development and demos:
// it runs migrations, seeds an admin user with a hashed API key, and loads
// product fixtures from one or more JSON files (optionally gzip-compressed).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/storefront-go/storefront/internal/handler"
	"github.com/storefront-go/storefront/internal/storage/postgres"
)

type imageJSON struct {
	AssetID string `json:"asset_id"`
	URL     string `json:"url"`
}

type productJSON struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	Category string          `json:"category"`
	Images   []imageJSON     `json:"images"`
}

func main() {
	var (
		databaseURL   string
		productsFiles string
		adminName     string
		adminEmail    string
		adminKey      string
		pepper        string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFiles, "products-files", "db/seed/products.json", "comma-separated product JSON files (.json or .json.gz)")
	flag.StringVar(&adminName, "admin-name", "Admin", "name of the seeded admin user")
	flag.StringVar(&adminEmail, "admin-email", "admin@example.com", "email of the seeded admin user")
	flag.StringVar(&adminKey, "admin-key", "", "API key for the admin user (or SHOP_SEED_ADMIN_KEY env)")
	flag.StringVar(&pepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or SHOP_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminKey == "" {
		adminKey = os.Getenv("SHOP_SEED_ADMIN_KEY")
	}
	if adminKey == "" {
		slog.Error("admin API key is required: set --admin-key or SHOP_SEED_ADMIN_KEY")
		os.Exit(1)
	}
	if pepper == "" {
		pepper = os.Getenv("SHOP_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	files := strings.Split(productsFiles, ",")
	if err := run(ctx, databaseURL, files, adminName, adminEmail, adminKey, pepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string, files []string, adminName, adminEmail, adminKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	adminID, err := seedAdmin(ctx, pool, adminName, adminEmail, adminKey, pepper)
	if err != nil {
		return errors.Wrap(err, "seed admin user")
	}

	products, err := loadProducts(ctx, files)
	if err != nil {
		return errors.Wrap(err, "load product files")
	}

	if err := seedProducts(ctx, pool, adminID, products); err != nil {
		return errors.Wrap(err, "seed products")
	}

	return nil
}

const upsertUserSQL = `
INSERT INTO users (id, name, email, role, key_hash, active)
VALUES ($1, $2, $3, 'admin', $4, TRUE)
ON CONFLICT (email) DO UPDATE
SET name = EXCLUDED.name, role = 'admin', key_hash = EXCLUDED.key_hash, active = TRUE
RETURNING id`

func seedAdmin(ctx context.Context, pool *pgxpool.Pool, name, email, key, pepper string) (string, error) {
	slog.Info("seeding admin user", slog.String("email", email))

	keyHash := handler.HashAPIKey([]byte(pepper), key)

	var id string
	err := pool.QueryRow(ctx, upsertUserSQL, uuid.New().String(), name, email, keyHash).Scan(&id)
	if err != nil {
		return "", errors.Wrap(err, "upsert admin")
	}

	slog.Info("upserted admin user", slog.String("id", id))
	return id, nil
}

// loadProducts parses every file concurrently. Files ending in .gz are
// decompressed on the fly.
func loadProducts(ctx context.Context, files []string) ([]productJSON, error) {
	parsed := make([][]productJSON, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			list, err := parseProductsFile(path)
			if err != nil {
				return errors.Wrapf(err, "parse %s", path)
			}
			slog.Info("parsed products file", slog.String("path", path), slog.Int("count", len(list)))
			parsed[i] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []productJSON
	for _, list := range parsed {
		all = append(all, list...)
	}
	return all, nil
}

func parseProductsFile(path string) ([]productJSON, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "create gzip reader")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	var products []productJSON
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, errors.Wrap(err, "decode products JSON")
	}
	return products, nil
}

const upsertProductSQL = `
INSERT INTO products (id, name, price, stock, category, images, owner_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name, price = EXCLUDED.price, stock = EXCLUDED.stock,
    category = EXCLUDED.category, images = EXCLUDED.images`

func seedProducts(ctx context.Context, pool *pgxpool.Pool, ownerID string, products []productJSON) error {
	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		id := p.ID
		if id == "" {
			id = uuid.New().String()
		}
		images, err := json.Marshal(p.Images)
		if err != nil {
			return errors.Wrapf(err, "marshal images of %s", p.Name)
		}

		if _, err := pool.Exec(ctx, upsertProductSQL,
			id, p.Name, p.Price, p.Stock, p.Category, images, ownerID,
		); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.Name)
		}

		slog.Info("upserted product", slog.String("id", id), slog.String("name", p.Name))
	}

	return nil
}
