package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/activhome/lightstack/internal/action"
	"github.com/activhome/lightstack/internal/card"
	"github.com/activhome/lightstack/internal/config"
	"github.com/activhome/lightstack/internal/discovery"
	"github.com/activhome/lightstack/internal/hass"
	"github.com/activhome/lightstack/internal/logging"
	"github.com/activhome/lightstack/internal/ui"
)

// Command flags
var (
	scanTimeout  int
	showStates   bool
	fmtWrite     bool
	fmtDiff      bool
	fmtFormat    string
	pressTimeout int
)

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(pressCmd)
}

func secondsDuration(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// signalContext is cancelled on Ctrl+C.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// scanCmd discovers Home Assistant on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Search the local network for Home Assistant",
	Long: `Search for Home Assistant servers using mDNS/DNS-SD discovery.

Home Assistant announces itself as _home-assistant._tcp when its zeroconf
integration is enabled. Every server found is listed with the URL to use
with --url.`,
	Example: `  # Scan for 5 seconds (default)
  lightstack scan

  # Longer scan for slow networks
  lightstack scan --timeout 15`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", int(discovery.DefaultScanTimeout/time.Second), "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	o, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	logger, err := o.logger(false)
	if err != nil {
		return err
	}
	defer logging.Sync()

	p := ui.NewPrinter(cmd.OutOrStdout())
	p.PrintHeader("Home Assistant discovery", "lightstack scan",
		ui.Detail{Key: "Service", Value: discovery.ServiceType},
		ui.Detail{Key: "Timeout", Value: secondsDuration(scanTimeout).String()})
	p.Newline()

	ctx, cancel := signalContext()
	defer cancel()

	s := discovery.NewScanner()
	s.Logger = logger.Named("discovery")
	s.Timeout = secondsDuration(scanTimeout)

	instances, err := s.Scan(ctx)
	if err != nil {
		p.PrintError("Scan failed", err, []string{
			"Check that this machine can send multicast traffic",
			"Try again with a longer --timeout",
		})
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(instances) == 0 {
		p.PrintResult(ui.NewFailureResult("No Home Assistant found", nil, []string{
			"Check that Home Assistant is running and on this network",
			"The zeroconf integration must be enabled",
			"Try increasing --timeout for slower networks",
			"Use --url to connect to a known address",
		}))
		return nil
	}

	rows := make([][]string, 0, len(instances))
	for _, inst := range instances {
		name := inst.Name
		if name == "" {
			name = "Home Assistant"
		}
		rows = append(rows, []string{name, inst.URL(), inst.Version, strings.TrimSuffix(inst.Hostname, ".")})
	}
	p.PrintTable([]string{"NAME", "URL", "VERSION", "HOST"}, rows)
	p.Newline()
	p.Printf("Use 'lightstack --url %s' to open the dashboard\n", instances[0].URL())
	return nil
}

// showCmd prints the card file
var showCmd = &cobra.Command{
	Use:   "show [card-file]",
	Short: "Show the rows of a card file",
	Long: `Print every view of a card file and its rows.

With --states the current state of each entity is read from Home Assistant.`,
	Example: `  # Show the default card
  lightstack show

  # Include live states
  lightstack show --states --url http://homeassistant.local:8123`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showStates, "states", false, "Read entity states from Home Assistant")
}

func runShow(cmd *cobra.Command, args []string) error {
	o, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	path, dash, err := loadCard(o, args)
	if err != nil {
		return err
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	params := []ui.Detail{{Key: "Card", Value: path}, {Key: "Views", Value: strconv.Itoa(len(dash.Views))}}

	var states map[string]hass.State
	if showStates {
		logger, err := o.logger(false)
		if err != nil {
			return err
		}
		defer logging.Sync()

		cfg, st, err := fetchStates(o, logger)
		if err != nil {
			p.PrintError("Could not read states", err, connectTips(err))
			return err
		}
		states = st
		params = append(params, ui.Detail{Key: "Server", Value: fmt.Sprintf("%s (%s)", cfg.LocationName, cfg.Version)})
	}

	p.PrintHeader("Light stack card", "lightstack show", params...)
	for _, view := range dash.Views {
		p.Newline()
		title := view.Path
		if view.Title != "" {
			title = fmt.Sprintf("%s  %s", view.Path, view.Title)
		}
		p.Println(ui.HeaderTitleStyle.Render(title))
		p.PrintTable(rowHeaders(states != nil), rowTable(view.Card, states))
	}
	return nil
}

func rowHeaders(withStates bool) []string {
	h := []string{"#", "ENTITY", "NAME", "ON", "OFF", "NAME TAP"}
	if withStates {
		h = append(h, "STATE")
	}
	return h
}

// rowTable formats the rows of cfg. states is nil when not fetched.
func rowTable(cfg card.CardConfig, states map[string]hass.State) [][]string {
	rows := make([][]string, 0, len(cfg.Items))
	for i, r := range cfg.Items {
		name := r.Name
		if name == "" {
			if st, ok := states[r.Entity]; ok {
				name = st.FriendlyName()
			}
		}
		row := []string{
			strconv.Itoa(i),
			r.Entity,
			name,
			describeAction(r.OnAction, "turn_on"),
			describeAction(r.OffAction, "turn_off"),
			describeNameTap(r),
		}
		if states != nil {
			st, ok := states[r.Entity]
			switch {
			case !ok:
				row = append(row, "unknown")
			case st.IsOn():
				row = append(row, ui.OnMarker+" "+st.State)
			default:
				row = append(row, ui.OffMarker+" "+st.State)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func describeAction(a *card.ActionSpec, def string) string {
	switch a.Kind() {
	case card.ActionNone:
		if a == nil {
			return def
		}
		return "none"
	case card.ActionCallService:
		return a.Service
	case card.ActionNavigate:
		return "→ " + a.Path()
	case card.ActionURL:
		return a.URLPath
	default:
		return string(a.Kind())
	}
}

func describeNameTap(r card.RowConfig) string {
	if r.TapAction.Kind() == card.ActionNavigate && r.TapAction.Path() != "" {
		return "→ " + r.TapAction.Path()
	}
	if p := strings.TrimSpace(r.NavigationPath); p != "" {
		return "→ " + p
	}
	return "details"
}

// validateCmd checks a card file
var validateCmd = &cobra.Command{
	Use:   "validate [card-file]",
	Short: "Check a card file",
	Long: `Parse and validate a card file without opening the dashboard.

Exits with an error when the file cannot be read or a row is invalid.`,
	Example: `  lightstack validate
  lightstack validate ~/cards/upstairs.toml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	o, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	p := ui.NewPrinter(cmd.OutOrStdout())

	path, err := cardArg(o, args)
	if err != nil {
		return err
	}
	dash, err := config.Load(path)
	if err != nil {
		p.PrintError("Invalid card file", err, []string{
			"Every row needs an entity such as light.kitchen",
			"height_mode is row or total; row_height is clamped to 50-220px",
			"style must be one of: " + strings.Join(card.StylePresets, ", "),
		})
		return fmt.Errorf("%s is not valid", path)
	}

	rows := 0
	for _, v := range dash.Views {
		rows += len(v.Card.Items)
	}
	r := ui.NewSuccessResult("Card file is valid",
		ui.Detail{Key: "File", Value: path},
		ui.Detail{Key: "Format", Value: string(config.FormatFor(path))},
		ui.Detail{Key: "Views", Value: strconv.Itoa(len(dash.Views))},
		ui.Detail{Key: "Rows", Value: strconv.Itoa(rows)})
	for _, v := range dash.Views {
		r.AddDetail("Card size "+v.Path, strconv.Itoa(v.Card.CardSize()))
	}
	p.PrintResult(r)
	return nil
}

// fmtCmd rewrites a card file in canonical form
var fmtCmd = &cobra.Command{
	Use:   "fmt [card-file]",
	Short: "Print a card file in canonical form",
	Long: `Print a card file normalized, with defaults stripped.

--diff shows what would change; --write rewrites the file in place.
--format converts between YAML and TOML on output.`,
	Example: `  # Show what formatting would change
  lightstack fmt --diff

  # Rewrite the file
  lightstack fmt --write

  # Convert to TOML
  lightstack fmt --format toml > card.toml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "Write the result back to the file")
	fmtCmd.Flags().BoolVarP(&fmtDiff, "diff", "d", false, "Show a diff instead of the formatted file")
	fmtCmd.Flags().StringVar(&fmtFormat, "format", "", "Output format (yaml, toml); default: from the file extension")
}

func runFmt(cmd *cobra.Command, args []string) error {
	o, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	path, err := cardArg(o, args)
	if err != nil {
		return err
	}

	format := config.FormatFor(path)
	if fmtFormat != "" {
		if format, err = config.ParseFormat(fmtFormat); err != nil {
			return err
		}
	}
	if fmtWrite && format != config.FormatFor(path) {
		return errors.New("--write cannot change the format; redirect the output to a new file instead")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read card file: %w", err)
	}
	dash, err := config.Parse(raw, config.FormatFor(path))
	if err != nil {
		return err
	}
	formatted, err := config.Marshal(dash, format)
	if err != nil {
		return err
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	switch {
	case fmtDiff:
		if !p.PrintDiff(string(raw), string(formatted)) {
			p.Println(path + " is already formatted")
		}
	case fmtWrite:
		if string(raw) == string(formatted) {
			return nil
		}
		if err := config.Save(path, dash); err != nil {
			return err
		}
		p.Println("Formatted " + path)
	default:
		p.Print(string(formatted))
	}
	return nil
}

// pressCmd runs a row action once
var pressCmd = &cobra.Command{
	Use:   "press <entity> <on|off|name|more-info>",
	Short: "Run a row action without the dashboard",
	Long: `Run the action of one part of a card row, exactly as a click would.

on and off use the row's on_action/off_action when configured, and
homeassistant.turn_on/turn_off otherwise. name follows the row's navigation
path. Navigation and details are printed instead of shown.`,
	Example: `  lightstack press light.kitchen on
  lightstack press light.hall off --url http://homeassistant.local:8123`,
	Args: cobra.ExactArgs(2),
	RunE: runPress,
}

func init() {
	pressCmd.Flags().IntVar(&pressTimeout, "timeout", 10, "Timeout in seconds")
}

func runPress(cmd *cobra.Command, args []string) error {
	o, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	logger, err := o.logger(false)
	if err != nil {
		return err
	}
	defer logging.Sync()

	tag := action.Tag(strings.ToLower(args[1]))
	switch tag {
	case action.TagOn, action.TagOff, action.TagName, action.TagMoreInfo:
	default:
		return fmt.Errorf("unknown action %q (want on, off, name or more-info)", args[1])
	}

	path, dash, err := loadCard(o, args[2:])
	if err != nil {
		return err
	}
	row, ok := findRow(dash, o.View, args[0])
	if !ok {
		return fmt.Errorf("%s is not a row of %s", args[0], path)
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	signals := &printSignals{p: p}

	var services action.ServiceCaller
	if tag == action.TagOn || tag == action.TagOff {
		ctx, cancel := context.WithTimeout(context.Background(), secondsDuration(pressTimeout))
		defer cancel()
		client, err := connect(ctx, o, logger)
		if err != nil {
			p.PrintError("Could not connect", err, connectTips(err))
			return err
		}
		defer func() { _ = client.Close() }()
		services = &recordingCaller{next: client, signals: signals}
	}

	ctx, cancel := context.WithTimeout(context.Background(), secondsDuration(pressTimeout))
	defer cancel()
	action.NewExecutor(services, signals, logger).Execute(ctx, tag, row)

	if tag == action.TagOn || tag == action.TagOff {
		if signals.failed {
			return fmt.Errorf("%s %s failed, see the log for details", row.Entity, tag)
		}
	}
	return nil
}

// findRow looks for entity in view (or every view when view is empty).
func findRow(d *card.Dashboard, view, entity string) (card.RowConfig, bool) {
	for _, v := range d.Views {
		if view != "" && v.Path != view {
			continue
		}
		if i := v.Card.IndexOf(entity); i >= 0 {
			return v.Card.Items[i], true
		}
	}
	return card.RowConfig{}, false
}

// printSignals prints the executor's side effects.
type printSignals struct {
	p      *ui.Printer
	failed bool
}

func (s *printSignals) MoreInfo(entityID string) { s.p.Println("Details: " + entityID) }
func (s *printSignals) Navigate(path string)     { s.p.Println("Navigate: " + path) }
func (s *printSignals) LocationChanged(string)   {}
func (s *printSignals) OpenURL(url string)       { s.p.Println("Open: " + url) }
func (s *printSignals) Action(spec card.ActionSpec, entityID string) {
	s.p.Printf("Unsupported action %q for %s\n", spec.Action, entityID)
}

// recordingCaller prints each service call and remembers failures, which the
// executor itself swallows.
type recordingCaller struct {
	next    action.ServiceCaller
	signals *printSignals
}

func (r *recordingCaller) CallService(ctx context.Context, domain, service string, data, target map[string]any) error {
	err := r.next.CallService(ctx, domain, service, data, target)
	if err != nil {
		r.signals.p.Printf("%s %s.%s: %v\n", ui.FailureMarker, domain, service, err)
		r.signals.failed = true
		return err
	}
	// a retry that succeeds clears an earlier failure
	r.signals.failed = false
	r.signals.p.Printf("%s %s.%s\n", ui.SuccessMarker, domain, service)
	return nil
}

// cardArg returns the card file named on the command line, else the
// configured one.
func cardArg(o *options, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return o.cardPath()
}

func loadCard(o *options, args []string) (string, *card.Dashboard, error) {
	path, err := cardArg(o, args)
	if err != nil {
		return "", nil, err
	}
	dash, err := config.Load(path)
	if err != nil {
		return path, nil, err
	}
	return path, dash, nil
}

// connect opens a websocket client for o.
func connect(ctx context.Context, o *options, logger *zap.Logger) (*hass.Client, error) {
	if o.URL == "" {
		return nil, errors.New("no Home Assistant URL: pass --url, set LIGHTSTACK_URL or run 'lightstack scan'")
	}
	token, err := o.token()
	if err != nil {
		return nil, err
	}
	client, err := hass.NewClient(o.URL, token)
	if err != nil {
		return nil, err
	}
	client.Logger = logger.Named("hass")
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

// fetchStates connects and reads the server configuration and all states.
func fetchStates(o *options, logger *zap.Logger) (hass.ServerConfig, map[string]hass.State, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := connect(ctx, o, logger)
	if err != nil {
		return hass.ServerConfig{}, nil, err
	}
	defer func() { _ = client.Close() }()

	cfg, err := client.GetConfig(ctx)
	if err != nil {
		return hass.ServerConfig{}, nil, err
	}
	list, err := client.GetStates(ctx)
	if err != nil {
		return cfg, nil, err
	}

	states := make(map[string]hass.State, len(list))
	for _, st := range list {
		states[st.EntityID] = st
	}
	o.rememberServer("", cfg.LocationName, o.URL, cfg.Version)
	return cfg, states, nil
}

func connectTips(err error) []string {
	if hass.IsAuthError(err) {
		return []string{
			"Create a long-lived access token in your Home Assistant profile",
			"Pass it with LIGHTSTACK_TOKEN or --token",
		}
	}
	return []string{
		hass.GetUserFriendlyMessage(err),
		"Check the URL; it is the address you open Home Assistant with",
		"Run 'lightstack scan' to find servers on this network",
	}
}
