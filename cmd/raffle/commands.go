package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli"

	"advent-raffle-backend/internal/app"
	"advent-raffle-backend/internal/repository/spreadsheet"
	"advent-raffle-backend/internal/service/catalog"
	"advent-raffle-backend/internal/service/raffle"
	"advent-raffle-backend/internal/utils/wallet"
)

// opener builds the app; migrate forces schema migrations on start.
type opener func(ctx context.Context, migrate bool) (*app.App, error)

func newCLI(open opener, out io.Writer) *cli.App {
	cliApp := cli.NewApp()
	cliApp.Name = "raffle"
	cliApp.Usage = "operate the advent calendar raffle"
	cliApp.Writer = out

	withApp := func(migrate bool, fn func(ctx context.Context, a *app.App, c *cli.Context) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			ctx := context.Background()
			a, err := open(ctx, migrate)
			if err != nil {
				return err
			}
			defer a.Close()
			return fn(ctx, a, c)
		}
	}
	printJSON := func(v interface{}) error {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	doorFlag := cli.IntFlag{Name: "door, d", Usage: "door number (1-24); 0 selects today's door"}
	atFlag := cli.StringFlag{Name: "at", Usage: "evaluate as of this RFC3339 instant instead of now"}

	cliApp.Commands = []cli.Command{
		{
			Name:  "migrate",
			Usage: "apply database migrations",
			Action: withApp(true, func(ctx context.Context, a *app.App, c *cli.Context) error {
				if a.DB == nil {
					return errors.New("migrate requires STORAGE_DRIVER=postgres")
				}
				fmt.Fprintln(out, "migrations applied")
				return nil
			}),
		},
		{
			Name:  "run",
			Usage: "allocate the winners of a door",
			Flags: []cli.Flag{doorFlag, atFlag},
			Action: withApp(false, func(ctx context.Context, a *app.App, c *cli.Context) error {
				now := time.Now()
				if at := c.String("at"); at != "" {
					t, err := time.Parse(time.RFC3339, at)
					if err != nil {
						return fmt.Errorf("--at: %w", err)
					}
					now = t
				}
				res, err := a.Raffle.Allocate(ctx, raffle.AllocationRequest{
					Door:  c.Int("door"),
					Token: a.Config.Raffle.SecretToken,
					Now:   now,
				})
				if err != nil {
					return err
				}
				return printJSON(res)
			}),
		},
		{
			Name:  "prizes",
			Usage: "manage the prize catalog",
			Subcommands: []cli.Command{
				{
					Name:      "import",
					Usage:     "load prizes from a JSON file",
					ArgsUsage: "<file.json>",
					Action: withApp(false, func(ctx context.Context, a *app.App, c *cli.Context) error {
						path := c.Args().First()
						if path == "" {
							return errors.New("missing prize file")
						}
						f, err := os.Open(path)
						if err != nil {
							return err
						}
						defer f.Close()
						prizes, err := catalog.Decode(f)
						if err != nil {
							return err
						}
						n, err := a.Catalog.Import(ctx, prizes, time.Now())
						if err != nil {
							return err
						}
						fmt.Fprintf(out, "imported %d prizes\n", n)
						return nil
					}),
				},
				{
					Name:  "list",
					Usage: "list the prizes of a door",
					Flags: []cli.Flag{doorFlag},
					Action: withApp(false, func(ctx context.Context, a *app.App, c *cli.Context) error {
						prizes, err := a.Catalog.ListByDoor(ctx, c.Int("door"))
						if err != nil {
							return err
						}
						return printJSON(prizes)
					}),
				},
			},
		},
		{
			Name:  "whitelist",
			Usage: "manage the database whitelist",
			Subcommands: []cli.Command{
				{
					Name:      "add",
					Usage:     "add wallets",
					ArgsUsage: "<wallet>...",
					Action: withApp(false, func(ctx context.Context, a *app.App, c *cli.Context) error {
						wallets := make([]string, 0, c.NArg())
						for _, arg := range c.Args() {
							w, err := wallet.Normalize(arg)
							if err != nil {
								return fmt.Errorf("%q: %w", arg, err)
							}
							wallets = append(wallets, w)
						}
						if len(wallets) == 0 {
							return errors.New("no wallets given")
						}
						return addWallets(ctx, a, out, wallets)
					}),
				},
				{
					Name:      "import",
					Usage:     "add every wallet listed in a CSV export",
					ArgsUsage: "<file.csv>",
					Action: withApp(false, func(ctx context.Context, a *app.App, c *cli.Context) error {
						path := c.Args().First()
						if path == "" {
							return errors.New("missing CSV file")
						}
						f, err := os.Open(path)
						if err != nil {
							return err
						}
						defer f.Close()
						set, err := spreadsheet.Parse(f)
						if err != nil {
							return fmt.Errorf("parse %s: %w", path, err)
						}
						wallets := make([]string, 0, len(set))
						for w := range set {
							wallets = append(wallets, w)
						}
						return addWallets(ctx, a, out, wallets)
					}),
				},
			},
		},
		{
			Name:  "participants",
			Usage: "manage registered wallets",
			Subcommands: []cli.Command{
				{
					Name:      "deactivate",
					Usage:     "exclude a wallet from future raffles",
					ArgsUsage: "<wallet>",
					Action: withApp(false, func(ctx context.Context, a *app.App, c *cli.Context) error {
						if err := a.Registration.Deactivate(ctx, c.Args().First()); err != nil {
							return err
						}
						fmt.Fprintln(out, "participant deactivated")
						return nil
					}),
				},
			},
		},
	}
	return cliApp
}

func addWallets(ctx context.Context, a *app.App, out io.Writer, wallets []string) error {
	n, err := a.WhitelistTable.Add(ctx, wallets...)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "added %d of %d wallets\n", n, len(wallets))
	return nil
}
