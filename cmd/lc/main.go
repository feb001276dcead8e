package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"lifecurve/internal/auth"
	"lifecurve/internal/config"
	"lifecurve/internal/db"
	"lifecurve/internal/engine"
	"lifecurve/internal/export"
	"lifecurve/internal/lifetimes"
	"lifecurve/internal/migrate"
	"lifecurve/internal/server"
	"lifecurve/internal/weibull"
)

var rootCmd = &cobra.Command{
	Use:   "lc",
	Short: "Lifecurve CLI",
	Long: `Lifecurve estimates Weibull failure curves for asset fleets.
Getting parameters:
- lc fit points: three ages by which 25%, 50% and 75% of assets have failed.
- lc fit mle: maximum-likelihood fit to observed lifetimes (inline or CSV).
- lc guided: answer a short questionnaire about how the assets fail.
- lc validate: sanity-check a shape/scale pair before using it.
Working with curves:
- lc curve generate: sample the PDF, CDF or hazard over its display domain.
- lc curve save/list/delete/compare: per-user named curves in .lifecurve.
- lc export: write curve samples to CSV or Excel.
- lc serve: HTTP API with the same operations.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("LIFECURVE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("email", "", "account email for saved-curve commands")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("email", rootCmd.PersistentFlags().Lookup("email"))
}

func registerCommands() {
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(curveCmd())
	rootCmd.AddCommand(fitCmd())
	rootCmd.AddCommand(guidedCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(serveCmd())
}

func validateCmd() *cobra.Command {
	var shape, scale float64
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a shape/scale pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, msg := weibull.ValidateParameters(shape, scale)
			out := map[string]any{"valid": ok}
			if msg != "" {
				out["message"] = msg
			}
			if viper.GetBool("json") {
				return printJSON(out)
			}
			if ok {
				fmt.Printf("ok: shape=%g scale=%g\n", shape, scale)
				return nil
			}
			return errors.New(msg)
		},
	}
	cmd.Flags().Float64Var(&shape, "shape", 0, "shape parameter (k)")
	cmd.Flags().Float64Var(&scale, "scale", 0, "scale parameter (lambda)")
	_ = cmd.MarkFlagRequired("shape")
	_ = cmd.MarkFlagRequired("scale")
	return cmd
}

func curveCmd() *cobra.Command {
	curve := &cobra.Command{
		Use:   "curve",
		Short: "Generate and manage curves",
		Long:  "Curves are (shape, scale) pairs. Generate samples one over its display domain; save/list/delete manage named curves for an account; compare shows several side by side.",
	}
	curve.AddCommand(curveGenerateCmd())
	curve.AddCommand(curveSaveCmd())
	curve.AddCommand(curveListCmd())
	curve.AddCommand(curveDeleteCmd())
	curve.AddCommand(curveCompareCmd())
	return curve
}

func curveGenerateCmd() *cobra.Command {
	var shape, scale float64
	var kind string
	var points int
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Sample a curve over its display domain",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if kind == "" {
					kind = e.Config.Defaults.CurveType
				}
				ct, err := weibull.ParseCurveType(kind)
				if err != nil {
					return err
				}
				if points == 0 {
					points = e.Config.Defaults.PlotPoints
				}
				c, err := weibull.Generate(shape, scale, ct, points)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(curvePayload(c))
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"x", string(c.Type)})
				for i, x := range c.X {
					tw.AppendRow(table.Row{fmt.Sprintf("%.4f", x), fmt.Sprintf("%.6f", c.Y[i])})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&shape, "shape", 0, "shape parameter (k)")
	cmd.Flags().Float64Var(&scale, "scale", 0, "scale parameter (lambda)")
	cmd.Flags().StringVar(&kind, "type", "", "curve type (pdf, cdf, hazard)")
	cmd.Flags().IntVar(&points, "points", 0, "number of sample points")
	_ = cmd.MarkFlagRequired("shape")
	_ = cmd.MarkFlagRequired("scale")
	return cmd
}

func curveSaveCmd() *cobra.Command {
	var opts engine.SaveCurveOptions
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a named curve for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				userID, err := resolveUser(ctx, e)
				if err != nil {
					return err
				}
				opts.UserID = userID
				c, err := e.SaveCurve(ctx, opts)
				if err != nil {
					return err
				}
				return printJSONOrTable(c)
			})
		},
	}
	cmd.Flags().StringVar(&opts.Name, "name", "", "curve name")
	cmd.Flags().StringVar(&opts.Description, "description", "", "description")
	cmd.Flags().Float64Var(&opts.Shape, "shape", 0, "shape parameter (k)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "scale parameter (lambda)")
	cmd.Flags().StringVar(&opts.Method, "method", "", "how the parameters were obtained")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("shape")
	_ = cmd.MarkFlagRequired("scale")
	return cmd
}

func curveListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved curves, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				userID, err := resolveUser(ctx, e)
				if err != nil {
					return err
				}
				curves, err := e.ListCurves(ctx, userID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(curves)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Name", "Shape", "Scale", "Method", "Created"})
				for _, c := range curves {
					tw.AppendRow(table.Row{c.Name, fmt.Sprintf("%.4f", c.Shape), fmt.Sprintf("%.4f", c.Scale), c.Method, c.CreatedAt})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func curveDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved curve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				userID, err := resolveUser(ctx, e)
				if err != nil {
					return err
				}
				return e.DeleteCurve(ctx, userID, args[0])
			})
		},
	}
	return cmd
}

func curveCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <name> [name...]",
		Short: "Compare saved curves side by side",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				userID, err := resolveUser(ctx, e)
				if err != nil {
					return err
				}
				type row struct {
					Name       string  `json:"name"`
					Shape      float64 `json:"shape"`
					Scale      float64 `json:"scale"`
					Method     string  `json:"method"`
					MedianLife float64 `json:"median_life"`
				}
				rows := make([]row, 0, len(args))
				for _, name := range args {
					c, err := e.GetCurve(ctx, userID, name)
					if err != nil {
						return fmt.Errorf("curve %q: %w", name, err)
					}
					// Weibull median: scale * ln(2)^(1/shape).
					median := c.Scale * math.Pow(math.Ln2, 1/c.Shape)
					rows = append(rows, row{Name: c.Name, Shape: c.Shape, Scale: c.Scale, Method: c.Method, MedianLife: median})
				}
				if viper.GetBool("json") {
					return printJSON(rows)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Name", "Shape", "Scale", "Method", "Median life"})
				for _, r := range rows {
					tw.AppendRow(table.Row{r.Name, fmt.Sprintf("%.4f", r.Shape), fmt.Sprintf("%.4f", r.Scale), r.Method, fmt.Sprintf("%.2f", r.MedianLife)})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func fitCmd() *cobra.Command {
	fit := &cobra.Command{
		Use:   "fit",
		Short: "Estimate parameters from data",
	}
	fit.AddCommand(fitPointsCmd())
	fit.AddCommand(fitMLECmd())
	return fit
}

func fitPointsCmd() *cobra.Command {
	var ages []float64
	cmd := &cobra.Command{
		Use:   "points",
		Short: "Fit to three ages (25%, 50%, 75% failed)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(ages) != 3 {
				return fmt.Errorf("--ages needs exactly three values, got %d", len(ages))
			}
			var fixed [3]float64
			copy(fixed[:], ages)
			params, err := weibull.FitPoints(fixed)
			if err != nil {
				return err
			}
			return printFit(params, "Point Fit")
		},
	}
	cmd.Flags().Float64SliceVar(&ages, "ages", nil, "ages at 25%, 50%, 75% failure (comma separated)")
	_ = cmd.MarkFlagRequired("ages")
	return cmd
}

func fitMLECmd() *cobra.Command {
	var file string
	var values []float64
	cmd := &cobra.Command{
		Use:   "mle",
		Short: "Maximum-likelihood fit to observed lifetimes",
		Long:  "Lifetimes come either from --values or from a CSV with asset_identifier, in_service_date and retirement_date columns; rows still in service are skipped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			data := values
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				records, err := lifetimes.ReadCSV(f)
				if err != nil {
					return err
				}
				data, err = lifetimes.FromRecords(records)
				if err != nil {
					return err
				}
			}
			params, err := weibull.FitMLE(data)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(map[string]any{
					"shape":  params.Shape,
					"scale":  params.Scale,
					"method": "Data Fit (MLE)",
					"sample": lifetimes.Summarize(data),
				})
			}
			s := lifetimes.Summarize(data)
			fmt.Printf("fitted %d lifetimes (mean %.2f, min %.2f, max %.2f years)\n", s.Count, s.Mean, s.Min, s.Max)
			return printFit(params, "Data Fit (MLE)")
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "CSV file of asset lifetimes")
	cmd.Flags().Float64SliceVar(&values, "values", nil, "lifetimes in years (comma separated)")
	return cmd
}

func guidedCmd() *cobra.Command {
	var pattern, profile string
	var predictable, defects, lateLife bool
	var averageLife float64
	cmd := &cobra.Command{
		Use:   "guided",
		Short: "Map questionnaire answers to starting parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if profile != "" {
					p, ok := e.Config.Profiles[profile]
					if !ok {
						return fmt.Errorf("unknown profile %q (see lifecurve.yml)", profile)
					}
					if averageLife <= 0 {
						return errors.New("--average-life must be positive")
					}
					return printFit(weibull.Parameters{Shape: p.Shape, Scale: averageLife}, "Guided Selection")
				}
				params, err := weibull.GuidedParameters(weibull.GuidedAnswers{
					Pattern:     weibull.FailurePattern(strings.ToLower(pattern)),
					Predictable: predictable,
					Defects:     defects,
					LateLife:    lateLife,
					AverageLife: averageLife,
				})
				if err != nil {
					return err
				}
				return printFit(params, "Guided Selection")
			})
		},
	}
	cmd.Flags().StringVar(&pattern, "pattern", "", "failure pattern (wearout, earlylife, neither)")
	cmd.Flags().StringVar(&profile, "profile", "", "named profile from lifecurve.yml instead of questionnaire flags")
	cmd.Flags().BoolVar(&predictable, "predictable", false, "wearout: failures cluster near end of life")
	cmd.Flags().BoolVar(&defects, "defects", false, "earlylife: failures are mostly defects")
	cmd.Flags().BoolVar(&lateLife, "late-life", false, "neither: probability stays low until late life")
	cmd.Flags().Float64Var(&averageLife, "average-life", 0, "typical lifetime in years")
	_ = cmd.MarkFlagRequired("average-life")
	return cmd
}

func exportCmd() *cobra.Command {
	var name, kind, format, outDir string
	var shape, scale float64
	var points int
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write curve samples to CSV or Excel",
		Long:  "Exports a saved curve (--name with --email) or an ad-hoc one (--shape/--scale). The output file is timestamped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if name != "" {
					userID, err := resolveUser(ctx, e)
					if err != nil {
						return err
					}
					c, err := e.GetCurve(ctx, userID, name)
					if err != nil {
						return err
					}
					shape, scale = c.Shape, c.Scale
				}
				if points == 0 {
					points = e.Config.Defaults.ExportPoints
				}
				tbl, err := export.CurveData(shape, scale, export.Kind(kind), points)
				if err != nil {
					return err
				}
				var data []byte
				switch format {
				case "xlsx":
					data, err = export.Excel(tbl)
				case "csv":
					data, err = export.CSV(tbl)
				default:
					return fmt.Errorf("unknown format %q (want csv or xlsx)", format)
				}
				if err != nil {
					return err
				}
				path := filepath.Join(outDir, export.Filename("weibull_curve", format, e.Now()))
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]any{"file": path, "rows": len(tbl.Rows)})
				}
				fmt.Printf("wrote %d rows to %s\n", len(tbl.Rows), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "saved curve name")
	cmd.Flags().Float64Var(&shape, "shape", 0, "shape parameter (k)")
	cmd.Flags().Float64Var(&scale, "scale", 0, "scale parameter (lambda)")
	cmd.Flags().StringVar(&kind, "kind", "both", "functions to export (pdf, cdf, both)")
	cmd.Flags().StringVar(&format, "format", "csv", "output format (csv, xlsx)")
	cmd.Flags().IntVar(&points, "points", 0, "number of sample points")
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	return cmd
}

func userCmd() *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	user.AddCommand(userRegisterCmd())
	return user
}

func userRegisterCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account in this workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			email := strings.TrimSpace(viper.GetString("email"))
			if email == "" {
				return errors.New("--email is required")
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				u, err := e.RegisterUser(ctx, email, password)
				if err != nil {
					return err
				}
				return printJSONOrTable(u)
			})
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (min 8 characters)")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Manage workspace config",
	}
	cfg.AddCommand(configInitCmd())
	cfg.AddCommand(configShowCmd())
	return cfg
}

func configInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default lifecurve.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
	return cmd
}

func configShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			return printJSONOrTable(cfg)
		},
	}
	return cmd
}

func logCmd() *cobra.Command {
	log := &cobra.Command{
		Use:   "log",
		Short: "Event log",
		Long:  "The diary of everything that happened: registrations, saved curves, deletions.",
	}
	log.AddCommand(logTailCmd())
	return log
}

func logTailCmd() *cobra.Command {
	var n int
	var evtType, entityKind, entityID string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				events, err := e.Repo.LatestEvents(ctx, n, evtType, entityKind, entityID)
				if err != nil {
					return err
				}
				return printJSONOrTable(events)
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	cmd.Flags().StringVar(&evtType, "type", "", "event type filter")
	cmd.Flags().StringVar(&entityKind, "entity-kind", "", "entity kind")
	cmd.Flags().StringVar(&entityID, "entity-id", "", "entity id")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				authCfg := auth.Config{
					JWTSecret: os.Getenv("LIFECURVE_JWT_SECRET"),
					TokenTTL:  time.Duration(e.Config.Auth.TokenTTLMinutes) * time.Minute,
				}
				if authCfg.JWTSecret == "" {
					return fmt.Errorf("LIFECURVE_JWT_SECRET is required for bearer auth")
				}
				handler, err := server.New(server.Config{Engine: e, BasePath: basePath, Auth: authCfg})
				if err != nil {
					return err
				}
				srv := &http.Server{Addr: addr, Handler: handler}
				go func() {
					<-ctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					srv.Shutdown(shutdownCtx)
				}()
				fmt.Printf("Serving Lifecurve API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at /docs)\n", addr, basePath, basePath)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	return cmd
}

// --- helpers ---

func withEngine(ctx context.Context, fn func(context.Context, engine.Engine) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	cfg, err := config.Load(workspace)
	if err != nil {
		return err
	}
	e := engine.New(conn, cfg)
	return fn(ctx, e)
}

func resolveUser(ctx context.Context, e engine.Engine) (string, error) {
	email := strings.TrimSpace(viper.GetString("email"))
	if email == "" {
		return "", errors.New("--email is required; register with 'lc user register' first")
	}
	u, err := e.Repo.GetUserByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return "", fmt.Errorf("no account for %s; register with 'lc user register'", email)
	}
	return u.ID, nil
}

// curvePayload makes a curve JSON-safe. The pdf and hazard diverge at x=0
// for shape < 1 and encoding/json rejects Inf, so unbounded samples become
// null.
func curvePayload(c weibull.Curve) map[string]any {
	ys := make([]*float64, len(c.Y))
	for i := range c.Y {
		if v := c.Y[i]; !math.IsInf(v, 0) && !math.IsNaN(v) {
			ys[i] = &c.Y[i]
		}
	}
	return map[string]any{"type": c.Type, "x": c.X, "y": ys}
}

func printFit(params weibull.Parameters, method string) error {
	if viper.GetBool("json") {
		return printJSON(map[string]any{"shape": params.Shape, "scale": params.Scale, "method": method})
	}
	fmt.Printf("%s: shape=%.4f scale=%.4f\n", method, params.Shape, params.Scale)
	return nil
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
