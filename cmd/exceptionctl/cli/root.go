// Package cli implements exceptionctl, which reads and writes the exception
// page settings of a site directly in its MongoDB database.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	configstore "github.com/dalemusser/exceptionpages/internal/app/store/config"
	contenttypestore "github.com/dalemusser/exceptionpages/internal/app/store/contenttypes"
	nodestore "github.com/dalemusser/exceptionpages/internal/app/store/nodes"
	"github.com/dalemusser/exceptionpages/internal/app/system/locale"
	"github.com/dalemusser/exceptionpages/internal/app/system/onlyone"
	"github.com/dalemusser/exceptionpages/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConfigStore is the record persistence the commands use. *configstore.Store
// satisfies it.
type ConfigStore interface {
	Get(ctx context.Context, name string) (models.ConfigRecord, error)
	Save(ctx context.Context, rec models.ConfigRecord) error
	Exists(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, name string) error
}

// Singletons answers which content types may back an error page and which
// node does. *onlyone.Service satisfies it.
type Singletons interface {
	AvailableContentTypes(ctx context.Context) ([]string, error)
	ExistsSingletonOfType(ctx context.Context, contentType, lang string) (int64, bool, error)
}

// Deps is what a command runs against.
type Deps struct {
	Config     ConfigStore
	Singletons Singletons
	Log        *zap.Logger
}

// Connector opens Deps for opts. The returned func releases them.
type Connector func(ctx context.Context, opts *Options) (*Deps, func(), error)

// Options are the persistent flags shared by every command.
type Options struct {
	MongoURI  string
	Database  string
	Languages string
	BaseURL   string
	Timeout   time.Duration
	Verbose   bool
}

// Run executes exceptionctl with args against MongoDB.
func Run(args []string) error {
	cmd := NewRootCmd(ConnectMongo)
	cmd.SetArgs(args)
	return cmd.Execute()
}

// NewRootCmd builds the command tree. connect is called lazily by commands
// that need the database.
func NewRootCmd(connect Connector) *cobra.Command {
	opts := &Options{}
	root := &cobra.Command{
		Use:           "exceptionctl",
		Short:         "Manage exception page settings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	fs := root.PersistentFlags()
	fs.StringVar(&opts.MongoURI, "mongo-uri", envOr("EXCEPTIONPAGES_MONGO_URI", "mongodb://localhost:27017"), "MongoDB connection URI")
	fs.StringVar(&opts.Database, "database", envOr("EXCEPTIONPAGES_MONGO_DATABASE", "exception_pages"), "MongoDB database name")
	fs.StringVar(&opts.Languages, "languages", envOr("EXCEPTIONPAGES_LANGUAGES", "en"), "comma-separated site languages; the first is the default")
	fs.StringVar(&opts.BaseURL, "base-url", envOr("EXCEPTIONPAGES_BASE_URL", "http://localhost:3000"), "site URL used when printing node links")
	fs.DurationVar(&opts.Timeout, "timeout", 10*time.Second, "overall command timeout")
	fs.BoolVarP(&opts.Verbose, "verbose", "v", false, "log database activity")

	root.AddCommand(
		newSettingsCmd(opts, connect),
		newTypesCmd(opts, connect),
	)
	return root
}

// withDeps runs fn with connected Deps and a context bounded by --timeout.
func withDeps(cmd *cobra.Command, opts *Options, connect Connector, fn func(ctx context.Context, d *Deps) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
	defer cancel()

	d, release, err := connect(ctx, opts)
	if err != nil {
		return err
	}
	defer release()
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return fn(ctx, d)
}

// ConnectMongo is the Connector used outside tests.
func ConnectMongo(ctx context.Context, opts *Options) (*Deps, func(), error) {
	log := zap.NewNop()
	if opts.Verbose {
		l, err := zap.NewDevelopment()
		if err == nil {
			log = l
		}
	}

	if err := wafflemongo.ValidateURI(opts.MongoURI); err != nil {
		return nil, nil, fmt.Errorf("invalid --mongo-uri: %w", err)
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	log.Debug("connected", zap.String("database", opts.Database))

	db := client.Database(opts.Database)
	d := &Deps{
		Config:     configstore.New(db),
		Singletons: onlyone.New(nodestore.New(db), contenttypestore.New(db)),
		Log:        log,
	}
	release := func() {
		_ = client.Disconnect(context.Background())
		_ = log.Sync()
	}
	return d, release, nil
}

func (o *Options) languages() ([]string, error) {
	neg, err := locale.New(locale.ParseList(o.Languages))
	if err != nil {
		return nil, err
	}
	return neg.Languages(), nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
