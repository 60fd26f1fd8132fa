package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saulfrancisco-ruizacevedo/go-neoviz"
	"github.com/saulfrancisco-ruizacevedo/go-neoviz/internal/render"
)

type queryOptions struct {
	cypher string
	name   string
	args   []string
	format string
	out    string
}

func newQueryCmd(g *globalOptions) *cobra.Command {
	opts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a query and print the graph viewer payload",
		Long: `Run a Cypher query (--cypher) or a canned query (--name) and print the result.

Results holding nodes and relationships are converted to the {nodes, links} viewer format;
other results are printed as rows. With --format html the graph is written as an echarts page.`,
		Example: `  neoviz query --name payor-documents --arg payor=uhc
  neoviz query --cypher 'MATCH (a)-[r]->(b) RETURN a, r, b LIMIT 50' --format html --out graph.html`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (opts.cypher == "") == (opts.name == "") {
				return fmt.Errorf("exactly one of --cypher and --name is required")
			}
			if opts.format != "json" && opts.format != "html" {
				return fmt.Errorf("unknown format %q (want json or html)", opts.format)
			}
			args, err := parseArgs(opts.args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			exec, err := connect(ctx, g.cfg)
			if err != nil {
				return err
			}
			defer exec.Close(ctx)

			svc, c, err := newService(ctx, g.cfg, exec.Reader(), logger)
			if err != nil {
				return err
			}
			defer c.Close()

			st := startStage(logger, "query")
			var res *neoviz.QueryResult
			if opts.name != "" {
				res, err = svc.Named(ctx, opts.name, args)
			} else {
				res, err = svc.Query(ctx, opts.cypher, nil)
			}
			if err != nil {
				return err
			}
			st.done(summarize(res), "id", res.ID, "cached", res.Cached)

			w := io.Writer(cmd.OutOrStdout())
			if opts.out != "" {
				f, err := os.Create(opts.out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return writeResult(w, res, opts.format, opts.name)
		},
	}

	cmd.Flags().StringVar(&opts.cypher, "cypher", "", "Cypher query text")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "canned query name (see 'neoviz queries')")
	cmd.Flags().StringArrayVar(&opts.args, "arg", nil, "canned query argument as key=value (repeatable)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "output format: json or html")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write to file instead of stdout")

	return cmd
}

func writeResult(w io.Writer, res *neoviz.QueryResult, format, title string) error {
	if format == "html" {
		if res.Graph == nil {
			return fmt.Errorf("query returned no graph; use --format json to see the rows")
		}
		return render.WriteHTML(w, *res.Graph, title)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if res.Graph != nil {
		return enc.Encode(res.Graph)
	}
	return enc.Encode(res.Rows)
}

func summarize(res *neoviz.QueryResult) string {
	if res.Graph != nil {
		return fmt.Sprintf("converted %d nodes, %d links", len(res.Graph.Nodes), len(res.Graph.Links))
	}
	return fmt.Sprintf("fetched %d rows", len(res.Rows))
}

// parseArgs turns ["k=v", ...] into a map.
func parseArgs(pairs []string) (map[string]string, error) {
	args := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --arg %q (want key=value)", pair)
		}
		args[key] = value
	}
	return args, nil
}
