// Package main provides the beatbox command-line client.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"

	beatv1 "github.com/osa030/beatbox/internal/api/beatv1"
	apiconnect "github.com/osa030/beatbox/internal/api/connect"
)

var (
	app     = kingpin.New("beatcli", "beatbox client")
	server  = app.Flag("server", "Server address").Default("http://localhost:8080").Envar("BEATBOX_SERVER").String()
	timeout = app.Flag("timeout", "Request timeout").Default("10s").Duration()

	// catalog commands
	searchCmd     = app.Command("search", "Search the catalog")
	searchGenre   = searchCmd.Flag("genre", "Genre (Tous for any)").String()
	searchMood    = searchCmd.Flag("mood", "Mood (Tous for any)").String()
	searchText    = searchCmd.Flag("title", "Title substring").Short('t').String()
	searchBPMMin  = searchCmd.Flag("bpm-min", "Minimum BPM").Int32()
	searchBPMMax  = searchCmd.Flag("bpm-max", "Maximum BPM").Int32()
	searchPage    = searchCmd.Flag("page", "Page (0-based)").Int32()
	searchLimit   = searchCmd.Flag("limit", "Page size").Int32()
	searchOrderBy = searchCmd.Flag("order-by", "title, bpm or created_at; prefix with - for descending").String()

	getCmd     = app.Command("get", "Show one or more beats")
	getBeatIDs = getCmd.Arg("beat-id", "Beat IDs").Required().Strings()

	genresCmd = app.Command("genres", "List genres and moods")

	// player commands
	playCmd    = app.Command("play", "Play the preview of a beat")
	playBeatID = playCmd.Arg("beat-id", "Beat ID").Required().String()

	pauseCmd  = app.Command("pause", "Pause playback")
	toggleCmd = app.Command("toggle", "Toggle play/pause")

	seekCmd = app.Command("seek", "Seek within the current track")
	seekPos = seekCmd.Arg("position", "Position (e.g. 45s, 1m10s)").Required().Duration()

	closeCmd      = app.Command("close", "Close the player")
	relinquishCmd = app.Command("relinquish", "Pause the shared player for a local player")
	stateCmd      = app.Command("state", "Show the playback state")

	watchCmd     = app.Command("watch", "Print playback notifications")
	watchLocal   = watchCmd.Flag("local", "Register as a local player").Bool()
	watchTrackID = watchCmd.Flag("track", "Track bound to the local player").String()

	playerCmd    = app.Command("player", "Interactive mini-player")
	playerBeatID = playerCmd.Arg("beat-id", "Beat to play on start").String()

	// admin commands
	adminCmd   = app.Command("admin", "Admin commands")
	adminToken = adminCmd.Flag("token", "Admin token (or set ADMIN_TOKEN env)").Envar("ADMIN_TOKEN").String()

	setActiveCmd    = adminCmd.Command("set-active", "Publish or withdraw a beat")
	setActiveBeatID = setActiveCmd.Arg("beat-id", "Beat ID").Required().String()
	setActiveValue  = setActiveCmd.Arg("active", "true or false").Required().Bool()

	listCmd     = adminCmd.Command("list", "List every beat, including inactive ones")
	listOrderBy = listCmd.Flag("order-by", "Ordering").String()

	filtersCmd = adminCmd.Command("filters", "List catalog filters")

	createCmd      = adminCmd.Command("create", "Add a beat")
	createID       = createCmd.Flag("id", "Beat ID (generated when empty)").String()
	createTitle    = createCmd.Flag("title", "Title").Required().String()
	createBPM      = createCmd.Flag("bpm", "Tempo").Int32()
	createGenres   = createCmd.Flag("genre", "Genre (repeatable)").Strings()
	createMoods    = createCmd.Flag("mood", "Mood (repeatable)").Strings()
	createCover    = createCmd.Flag("cover", "Cover art URL").String()
	createPreview  = createCmd.Flag("preview", "Preview audio locator").Required().String()
	createFull     = createCmd.Flag("full", "Full-length audio locator").String()
	createInactive = createCmd.Flag("inactive", "Do not list the beat yet").Bool()

	updateCmd    = adminCmd.Command("update", "Change fields of a beat")
	updateBeatID = updateCmd.Arg("beat-id", "Beat ID").Required().String()
	updateTitle  = optionalString(updateCmd.Flag("title", "Title"))
	updateBPM    = optionalInt32(updateCmd.Flag("bpm", "Tempo"))
	updateGenres = optionalStrings(updateCmd.Flag("genre", "Genre (repeatable, replaces all)"))
	updateMoods  = optionalStrings(updateCmd.Flag("mood", "Mood (repeatable, replaces all)"))
	updateCover  = optionalString(updateCmd.Flag("cover", "Cover art URL"))
	updatePrev   = optionalString(updateCmd.Flag("preview", "Preview audio locator"))
	updateFull   = optionalString(updateCmd.Flag("full", "Full-length audio locator"))

	deleteCmd    = adminCmd.Command("delete", "Remove a beat")
	deleteBeatID = deleteCmd.Arg("beat-id", "Beat ID").Required().String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	player := beatv1.NewPlayerServiceClient(http.DefaultClient, *server)
	catalog := beatv1.NewCatalogServiceClient(http.DefaultClient, *server)

	var err error
	switch command {
	case searchCmd.FullCommand():
		err = search(ctx, catalog)
	case getCmd.FullCommand():
		err = getBeats(ctx, catalog, *getBeatIDs)
	case genresCmd.FullCommand():
		err = listGenres(ctx, catalog)

	case playCmd.FullCommand():
		err = stateCall(ctx, func(ctx context.Context) (*beatv1.PlaybackState, error) {
			resp, err := player.Play(ctx, connect.NewRequest(&beatv1.PlayRequest{BeatID: *playBeatID}))
			if err != nil {
				return nil, err
			}
			return resp.Msg.State, nil
		})
	case pauseCmd.FullCommand():
		err = stateCall(ctx, func(ctx context.Context) (*beatv1.PlaybackState, error) {
			resp, err := player.Pause(ctx, connect.NewRequest(&beatv1.PauseRequest{}))
			if err != nil {
				return nil, err
			}
			return resp.Msg.State, nil
		})
	case toggleCmd.FullCommand():
		err = stateCall(ctx, func(ctx context.Context) (*beatv1.PlaybackState, error) {
			resp, err := player.TogglePlay(ctx, connect.NewRequest(&beatv1.TogglePlayRequest{}))
			if err != nil {
				return nil, err
			}
			return resp.Msg.State, nil
		})
	case seekCmd.FullCommand():
		err = stateCall(ctx, func(ctx context.Context) (*beatv1.PlaybackState, error) {
			resp, err := player.Seek(ctx, connect.NewRequest(&beatv1.SeekRequest{PositionMs: seekPos.Milliseconds()}))
			if err != nil {
				return nil, err
			}
			return resp.Msg.State, nil
		})
	case closeCmd.FullCommand():
		err = stateCall(ctx, func(ctx context.Context) (*beatv1.PlaybackState, error) {
			resp, err := player.Close(ctx, connect.NewRequest(&beatv1.CloseRequest{}))
			if err != nil {
				return nil, err
			}
			return resp.Msg.State, nil
		})
	case relinquishCmd.FullCommand():
		err = relinquish(ctx, player)
	case stateCmd.FullCommand():
		err = stateCall(ctx, func(ctx context.Context) (*beatv1.PlaybackState, error) {
			resp, err := player.GetState(ctx, connect.NewRequest(&beatv1.GetStateRequest{}))
			if err != nil {
				return nil, err
			}
			return resp.Msg.State, nil
		})
	case watchCmd.FullCommand():
		err = watch(ctx, player, *watchLocal, *watchTrackID)
	case playerCmd.FullCommand():
		err = runPlayer(ctx, player, *playerBeatID)

	case setActiveCmd.FullCommand(), listCmd.FullCommand(), filtersCmd.FullCommand(),
		createCmd.FullCommand(), updateCmd.FullCommand(), deleteCmd.FullCommand():
		err = runAdmin(ctx, command)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withTimeout bounds a unary call by the --timeout flag.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, *timeout)
}

// stateCall runs a player command and prints the resulting state.
func stateCall(ctx context.Context, call func(context.Context) (*beatv1.PlaybackState, error)) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	state, err := call(ctx)
	if err != nil {
		return err
	}
	printState(os.Stdout, state)
	return nil
}

func relinquish(ctx context.Context, client *beatv1.PlayerServiceClient) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	resp, err := client.Relinquish(ctx, connect.NewRequest(&beatv1.RelinquishRequest{}))
	if err != nil {
		return err
	}
	if resp.Msg.WasPlaying {
		fmt.Println("Shared player paused.")
	} else {
		fmt.Println("Shared player was not playing.")
	}
	printState(os.Stdout, resp.Msg.State)
	return nil
}

func search(ctx context.Context, client *beatv1.CatalogServiceClient) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	resp, err := client.SearchBeats(ctx, connect.NewRequest(&beatv1.SearchBeatsRequest{
		Genre:   *searchGenre,
		Mood:    *searchMood,
		Search:  *searchText,
		BPMMin:  *searchBPMMin,
		BPMMax:  *searchBPMMax,
		Page:    *searchPage,
		Limit:   *searchLimit,
		OrderBy: *searchOrderBy,
	}))
	if err != nil {
		return err
	}

	printBeats(os.Stdout, resp.Msg.Beats)
	fmt.Printf("\nPage %d (limit %d), %d matching beats\n", resp.Msg.Page, resp.Msg.Limit, resp.Msg.Total)
	return nil
}

// getBeats prints a single beat in full, or several as a table.
func getBeats(ctx context.Context, client *beatv1.CatalogServiceClient, ids []string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if len(ids) == 1 {
		resp, err := client.GetBeat(ctx, connect.NewRequest(&beatv1.GetBeatRequest{ID: ids[0]}))
		if err != nil {
			return err
		}
		printBeat(os.Stdout, resp.Msg.Beat)
		return nil
	}

	resp, err := client.GetBeats(ctx, connect.NewRequest(&beatv1.GetBeatsRequest{IDs: ids}))
	if err != nil {
		return err
	}
	printBeats(os.Stdout, resp.Msg.Beats)
	if missing := len(ids) - len(resp.Msg.Beats); missing > 0 {
		fmt.Printf("\n%d beat(s) not found or not listed\n", missing)
	}
	return nil
}

func listGenres(ctx context.Context, client *beatv1.CatalogServiceClient) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	resp, err := client.ListGenres(ctx, connect.NewRequest(&beatv1.ListGenresRequest{}))
	if err != nil {
		return err
	}
	fmt.Println("Genres:")
	for _, g := range resp.Msg.Genres {
		fmt.Printf("  %s\n", g)
	}
	fmt.Println("Moods:")
	for _, m := range resp.Msg.Moods {
		fmt.Printf("  %s\n", m)
	}
	return nil
}

func watch(ctx context.Context, client *beatv1.PlayerServiceClient, local bool, trackID string) error {
	stream, err := client.Subscribe(ctx, connect.NewRequest(&beatv1.SubscribeRequest{
		LocalPlayer: local,
		TrackID:     trackID,
	}))
	if err != nil {
		return err
	}
	defer stream.Close()

	fmt.Println("Subscribed to notifications. Press Ctrl+C to exit.")

	for stream.Receive() {
		printNotification(os.Stdout, stream.Msg(), time.Now())
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func runAdmin(ctx context.Context, command string) error {
	if *adminToken == "" {
		return errors.New("admin token is required (use --token or ADMIN_TOKEN env)")
	}

	client := beatv1.NewAdminServiceClient(
		http.DefaultClient,
		*server,
		connect.WithInterceptors(tokenInterceptor(*adminToken)),
	)

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	switch command {
	case setActiveCmd.FullCommand():
		resp, err := client.SetBeatActive(ctx, connect.NewRequest(&beatv1.SetBeatActiveRequest{
			ID:     *setActiveBeatID,
			Active: *setActiveValue,
		}))
		if err != nil {
			return err
		}
		printBeat(os.Stdout, resp.Msg.Beat)

	case listCmd.FullCommand():
		resp, err := client.ListBeats(ctx, connect.NewRequest(&beatv1.ListBeatsRequest{OrderBy: *listOrderBy}))
		if err != nil {
			return err
		}
		printBeats(os.Stdout, resp.Msg.Beats)

	case filtersCmd.FullCommand():
		resp, err := client.ListFilters(ctx, connect.NewRequest(&beatv1.ListFiltersRequest{}))
		if err != nil {
			return err
		}
		printFilters(os.Stdout, resp.Msg.Filters)

	case createCmd.FullCommand():
		active := !*createInactive
		resp, err := client.CreateBeat(ctx, connect.NewRequest(&beatv1.CreateBeatRequest{
			ID:              *createID,
			Title:           *createTitle,
			BPM:             *createBPM,
			Genres:          *createGenres,
			Moods:           *createMoods,
			CoverArtURL:     *createCover,
			PreviewAudioURL: *createPreview,
			FullAudioURL:    *createFull,
			Active:          &active,
		}))
		if err != nil {
			return err
		}
		printBeat(os.Stdout, resp.Msg.Beat)

	case updateCmd.FullCommand():
		resp, err := client.UpdateBeat(ctx, connect.NewRequest(&beatv1.UpdateBeatRequest{
			ID:              *updateBeatID,
			Title:           updateTitle.get(),
			BPM:             updateBPM.get(),
			Genres:          updateGenres.get(),
			Moods:           updateMoods.get(),
			CoverArtURL:     updateCover.get(),
			PreviewAudioURL: updatePrev.get(),
			FullAudioURL:    updateFull.get(),
		}))
		if err != nil {
			return err
		}
		printBeat(os.Stdout, resp.Msg.Beat)

	case deleteCmd.FullCommand():
		if _, err := client.DeleteBeat(ctx, connect.NewRequest(&beatv1.DeleteBeatRequest{ID: *deleteBeatID})); err != nil {
			return err
		}
		fmt.Printf("Beat %s deleted.\n", *deleteBeatID)
	}
	return nil
}

// tokenInterceptor attaches the admin token to every unary request.
func tokenInterceptor(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set(apiconnect.AdminTokenHeader, token)
			return next(ctx, req)
		}
	}
}
