package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/my2lite/my2lite/internal/config"
	"github.com/my2lite/my2lite/internal/search"
	"github.com/my2lite/my2lite/internal/source"
)

var (
	searchBackend string
	searchTypes   string
	searchMenu    int
	searchSub     string
	searchMode    string
	searchLimit   int
)

var searchCmd = &cobra.Command{
	Use:   "search [key]",
	Short: "Search the talk_art and nothings tables",
	Long: `Query the migrated SQLite file (default) or the MySQL source with --backend mysql.
Without a subcommand the operations named by --type run in order.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := firstArg(args)
		return withSearcher(cmd, func(ctx context.Context, s *search.Searcher) error {
			p := search.NewPrinter(cmd.OutOrStdout(), key)
			for _, op := range strings.Split(searchTypes, ",") {
				var err error
				switch strings.TrimSpace(op) {
				case "menu":
					err = printMenu(ctx, s, p)
				case "talk":
					err = printTalks(ctx, s, p, key)
				case "nothings":
					err = printNothings(ctx, s, p, key)
				case "rand", "rand_nothings":
					err = printRandom(ctx, s, p)
				case "":
				default:
					err = fmt.Errorf("unknown search type %q (expected menu, talk, nothings or rand)", op)
				}
				if err != nil {
					return err
				}
			}
			return nil
		})
	},
}

var searchMenuCmd = &cobra.Command{
	Use:   "menu",
	Short: "List the talk categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSearcher(cmd, func(ctx context.Context, s *search.Searcher) error {
			return printMenu(ctx, s, search.NewPrinter(cmd.OutOrStdout(), ""))
		})
	},
}

var searchTalkCmd = &cobra.Command{
	Use:   "talk [key]",
	Short: "Search talks by category, title and content",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := firstArg(args)
		return withSearcher(cmd, func(ctx context.Context, s *search.Searcher) error {
			return printTalks(ctx, s, search.NewPrinter(cmd.OutOrStdout(), key), key)
		})
	},
}

var searchNothingsCmd = &cobra.Command{
	Use:   "nothings [key]",
	Short: "Search sentences",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := firstArg(args)
		return withSearcher(cmd, func(ctx context.Context, s *search.Searcher) error {
			return printNothings(ctx, s, search.NewPrinter(cmd.OutOrStdout(), key), key)
		})
	},
}

var searchRandCmd = &cobra.Command{
	Use:   "rand",
	Short: "Print random sentences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSearcher(cmd, func(ctx context.Context, s *search.Searcher) error {
			return printRandom(ctx, s, search.NewPrinter(cmd.OutOrStdout(), ""))
		})
	},
}

var searchSQLCmd = &cobra.Command{
	Use:   "sql <select statement>",
	Short: "Run a read-only SELECT and print the rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSearcher(cmd, func(ctx context.Context, s *search.Searcher) error {
			rs, err := s.Query(ctx, args[0])
			if err != nil {
				return err
			}
			search.NewPrinter(cmd.OutOrStdout(), "").ResultSet(rs)
			return nil
		})
	},
}

// withSearcher opens the configured backend, runs fn and closes everything.
func withSearcher(cmd *cobra.Command, fn func(ctx context.Context, s *search.Searcher) error) error {
	backend, err := search.ParseBackend(searchBackend)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if backend == search.BackendSQLite {
		path := cfg.Target.Path
		if path == "" {
			return fmt.Errorf("no SQLite file: pass --sqlite or set target.path")
		}
		s, err := search.OpenSQLite(ctx, path)
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(ctx, s)
	}

	reader, err := connectSource(ctx, cfg.Source)
	if err != nil {
		return err
	}
	defer reader.Close()

	s, err := search.New(reader.DB(), search.BackendMySQL)
	if err != nil {
		return err
	}
	return fn(ctx, s)
}

func connectSource(ctx context.Context, src config.SourceConfig) (*source.MySQLReader, error) {
	reader := source.NewMySQLReader(src)
	if err := reader.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connecting to source: %w", err)
	}
	return reader, nil
}

func printMenu(ctx context.Context, s *search.Searcher, p *search.Printer) error {
	menu, err := s.Menu(ctx)
	if err != nil {
		return err
	}
	p.Menu(menu)
	return nil
}

func printTalks(ctx context.Context, s *search.Searcher, p *search.Printer, key string) error {
	sl, err := search.ParseSlice(searchSub)
	if err != nil {
		return err
	}
	talks, err := s.Talks(ctx, search.TalkQuery{Key: key, Menu: searchMenu, Mode: search.Mode(searchMode)})
	if err != nil {
		return err
	}
	p.Talks(talks, sl)
	return nil
}

func printNothings(ctx context.Context, s *search.Searcher, p *search.Printer, key string) error {
	sl, err := search.ParseSlice(searchSub)
	if err != nil {
		return err
	}
	sentences, err := s.Nothings(ctx, key)
	if err != nil {
		return err
	}
	p.Sentences(sentences, sl)
	return nil
}

func printRandom(ctx context.Context, s *search.Searcher, p *search.Printer) error {
	sentences, err := s.Random(ctx, searchLimit)
	if err != nil {
		return err
	}
	p.Random(sentences)
	return nil
}

func firstArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func init() {
	pf := searchCmd.PersistentFlags()
	addSourceFlags(pf)
	addTargetFlag(pf)
	pf.StringVar(&searchBackend, "backend", "sqlite", "database to search: sqlite or mysql")
	pf.IntVar(&searchMenu, "menu", 0, "restrict talks to this category number from the menu")
	pf.StringVar(&searchSub, "sub", "0,", "print only results start,end")
	pf.StringVar(&searchMode, "mode", string(search.ModeFuzzy), "talk matching: fuzzy (category, title, content) or accurate (title)")
	pf.IntVarP(&searchLimit, "limit", "n", search.DefaultRandomLimit, "number of random sentences")
	searchCmd.Flags().StringVar(&searchTypes, "type", "menu,talk,nothings", "operations to run in order")

	searchCmd.AddCommand(searchMenuCmd)
	searchCmd.AddCommand(searchTalkCmd)
	searchCmd.AddCommand(searchNothingsCmd)
	searchCmd.AddCommand(searchRandCmd)
	searchCmd.AddCommand(searchSQLCmd)
	rootCmd.AddCommand(searchCmd)
}
