package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/pkg/client"
)

// run opens the app, calls fn and always flushes the logger.
func run(fn func(ctx context.Context, a *app, c *cli.Command) error) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		a, err := newApp(c)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(ctx, a, c)
	}
}

// submit drives a form through one submission so failures surface the API's field errors.
func submit[T any](ctx context.Context, a *app, values T, fn func(context.Context, T) error) error {
	form := client.NewForm(values)
	err := form.Submit(ctx, fn)
	if err != nil {
		a.log.Debug("submission rejected", zap.String("state", form.State().String()), zap.Any("fields", form.FieldErrors()))
	}
	return err
}

type credentials struct {
	Username string
	Password string
}

func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
		&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true, Sources: cli.EnvVars("SUPPORTCTL_PASSWORD")},
	}
}

func registerCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account and sign in",
		Flags: credentialFlags(),
		Action: run(func(ctx context.Context, a *app, c *cli.Command) error {
			var user *client.User
			in := credentials{Username: c.String("username"), Password: c.String("password")}
			err := submit(ctx, a, in, func(ctx context.Context, v credentials) error {
				var err error
				user, err = a.client.Register(ctx, v.Username, v.Password)
				return err
			})
			if err != nil {
				return err
			}
			if err := a.persist(); err != nil {
				return err
			}
			return printUser(a, "registered", user)
		}),
	}
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in and store the session",
		Flags: credentialFlags(),
		Action: run(func(ctx context.Context, a *app, c *cli.Command) error {
			user, err := a.client.Login(ctx, c.String("username"), c.String("password"))
			if err != nil {
				return err
			}
			if err := a.persist(); err != nil {
				return err
			}
			return printUser(a, "logged in as", user)
		}),
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "End the session",
		Action: run(func(ctx context.Context, a *app, c *cli.Command) error {
			if err := a.client.Logout(ctx); err != nil {
				a.log.Warn("server logout failed", zap.Error(err))
			}
			if err := a.persist(); err != nil {
				return err
			}
			fmt.Println("logged out")
			return nil
		}),
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the signed-in user",
		Action: run(func(ctx context.Context, a *app, c *cli.Command) error {
			state, err := a.client.Session(ctx)
			if err != nil {
				return err
			}
			if a.json {
				return printJSON(state)
			}
			if !state.Authenticated || state.User == nil {
				fmt.Println("not logged in")
				return nil
			}
			printKV([][2]string{{"id", state.User.ID}, {"username", state.User.Username}})
			return nil
		}),
	}
}

func printUser(a *app, verb string, user *client.User) error {
	if a.json {
		return printJSON(user)
	}
	fmt.Printf("%s %s\n", verb, user.Username)
	return nil
}

func ticketsCommand() *cli.Command {
	return &cli.Command{
		Name:  "tickets",
		Usage: "Support ticket commands",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List tickets, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Value: "all"},
					&cli.StringFlag{Name: "priority", Value: "all"},
					&cli.StringFlag{Name: "search", Aliases: []string{"q"}},
					&cli.IntFlag{Name: "limit"},
					&cli.IntFlag{Name: "offset"},
				},
				Action: run(func(ctx context.Context, a *app, c *cli.Command) error {
					items, err := a.client.ListTickets(ctx, client.TicketFilter{
						Status:   c.String("status"),
						Priority: c.String("priority"),
						Search:   c.String("search"),
						Limit:    int(c.Int("limit")),
						Offset:   int(c.Int("offset")),
					})
					if err != nil {
						return err
					}
					if a.json {
						return printJSON(items)
					}
					printTickets(items)
					return nil
				}),
			},
			{
				Name:  "watch",
				Usage: "Re-fetch the ticket list on an interval until interrupted",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Value: "all"},
					&cli.StringFlag{Name: "priority", Value: "all"},
					&cli.StringFlag{Name: "search", Aliases: []string{"q"}},
					&cli.DurationFlag{Name: "interval", Value: 30 * time.Second},
					&cli.IntFlag{Name: "count", Usage: "stop after this many refreshes (0 = forever)"},
				},
				Action: run(func(ctx context.Context, a *app, c *cli.Command) error {
					ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
					defer stop()

					filter := client.TicketFilter{
						Status:   c.String("status"),
						Priority: c.String("priority"),
						Search:   c.String("search"),
					}
					return watchTickets(ctx, a, filter, c.Duration("interval"), int(c.Int("count")))
				}),
			},
			{
				Name:      "get",
				Usage:     "Show one ticket",
				ArgsUsage: "<id>",
				Action: run(func(ctx context.Context, a *app, c *cli.Command) error {
					id := c.Args().First()
					if id == "" {
						return errors.New("ticket id is required")
					}
					t, err := a.client.GetTicket(ctx, id)
					if err != nil {
						return err
					}
					return printTicketResult(a, t)
				}),
			},
			{
				Name:  "create",
				Usage: "Open a ticket",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Required: true},
					&cli.StringFlag{Name: "description", Required: true},
					&cli.StringFlag{Name: "category", Required: true, Usage: "hardware, software, network, security or other"},
					&cli.StringFlag{Name: "priority", Usage: "low, medium, high or urgent (default medium)"},
					&cli.StringFlag{Name: "customer-name", Required: true},
					&cli.StringFlag{Name: "customer-email", Required: true},
					&cli.StringFlag{Name: "assign"},
				},
				Action: run(func(ctx context.Context, a *app, c *cli.Command) error {
					in := client.NewTicket{
						Title:         c.String("title"),
						Description:   c.String("description"),
						Category:      c.String("category"),
						Priority:      c.String("priority"),
						CustomerName:  c.String("customer-name"),
						CustomerEmail: c.String("customer-email"),
						AssignedTo:    optional(c, "assign"),
					}
					var t *client.Ticket
					err := submit(ctx, a, in, func(ctx context.Context, v client.NewTicket) error {
						var err error
						t, err = a.client.CreateTicket(ctx, v)
						return err
					})
					if err != nil {
						return err
					}
					return printTicketResult(a, t)
				}),
			},
			{
				Name:      "status",
				Usage:     "Change a ticket's status",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Required: true, Usage: "open, in-progress, resolved or closed"},
					&cli.StringFlag{Name: "assign"},
					&cli.BoolFlag{Name: "unassign"},
				},
				Action: run(func(ctx context.Context, a *app, c *cli.Command) error {
					id := c.Args().First()
					if id == "" {
						return errors.New("ticket id is required")
					}
					in := client.StatusChange{Status: c.String("status"), AssignedTo: assignee(c)}
					t, err := a.client.UpdateTicketStatus(ctx, id, in)
					if err != nil {
						return err
					}
					return printTicketResult(a, t)
				}),
			},
			{
				Name:      "update",
				Usage:     "Edit ticket fields",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title"},
					&cli.StringFlag{Name: "description"},
					&cli.StringFlag{Name: "status"},
					&cli.StringFlag{Name: "priority"},
					&cli.StringFlag{Name: "category"},
					&cli.StringFlag{Name: "customer-name"},
					&cli.StringFlag{Name: "customer-email"},
					&cli.StringFlag{Name: "assign"},
					&cli.BoolFlag{Name: "unassign"},
				},
				Action: run(func(ctx context.Context, a *app, c *cli.Command) error {
					id := c.Args().First()
					if id == "" {
						return errors.New("ticket id is required")
					}
					patch := client.TicketPatch{
						Title:         optional(c, "title"),
						Description:   optional(c, "description"),
						Status:        optional(c, "status"),
						Priority:      optional(c, "priority"),
						Category:      optional(c, "category"),
						CustomerName:  optional(c, "customer-name"),
						CustomerEmail: optional(c, "customer-email"),
						AssignedTo:    assignee(c),
					}
					t, err := a.client.UpdateTicket(ctx, id, patch)
					if err != nil {
						return err
					}
					return printTicketResult(a, t)
				}),
			},
		},
	}
}

// watchTickets polls like the dashboard's refresh button: drop cached lists, then read again.
func watchTickets(ctx context.Context, a *app, filter client.TicketFilter, interval time.Duration, count int) error {
	if interval <= 0 {
		return errors.New("interval must be positive")
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for n := 1; ; n++ {
		a.client.RefreshTickets()
		items, err := a.client.ListTickets(ctx, filter)
		if err != nil {
			return err
		}
		if a.json {
			if err := printJSON(items); err != nil {
				return err
			}
		} else {
			fmt.Printf("-- %s --\n", time.Now().Format("15:04:05"))
			printTickets(items)
		}
		if count > 0 && n >= count {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func printTicketResult(a *app, t *client.Ticket) error {
	if a.json {
		return printJSON(t)
	}
	printTicket(t)
	return nil
}

// optional returns a pointer only for flags given on the command line.
func optional(c *cli.Command, name string) *string {
	if !c.IsSet(name) {
		return nil
	}
	v := c.String(name)
	return &v
}

// assignee maps --unassign to an explicit empty value, which clears the assignee.
func assignee(c *cli.Command) *string {
	if c.Bool("unassign") {
		empty := ""
		return &empty
	}
	return optional(c, "assign")
}

func contactCommand() *cli.Command {
	return &cli.Command{
		Name:  "contact",
		Usage: "Send a contact message",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "company", Required: true},
			&cli.StringFlag{Name: "phone"},
			&cli.StringFlag{Name: "interest", Usage: "service of interest"},
			&cli.StringFlag{Name: "message", Required: true},
		},
		Action: run(func(ctx context.Context, a *app, c *cli.Command) error {
			in := client.ContactForm{
				Name:            c.String("name"),
				Email:           c.String("email"),
				Company:         c.String("company"),
				Phone:           c.String("phone"),
				ServiceInterest: c.String("interest"),
				Message:         c.String("message"),
			}
			var receipt *client.Receipt
			err := submit(ctx, a, in, func(ctx context.Context, v client.ContactForm) error {
				var err error
				receipt, err = a.client.SubmitContact(ctx, v)
				return err
			})
			if err != nil {
				return err
			}
			return printReceipt(a, receipt)
		}),
	}
}

func demoCommand() *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "Request a product demo",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "company", Required: true},
			&cli.StringFlag{Name: "phone", Required: true},
			&cli.StringFlag{Name: "company-size", Required: true, Usage: "1-10, 11-50, 51-200, 201-500 or 500+"},
			&cli.StringFlag{Name: "interest", Required: true, Usage: "it-support, cybersecurity, server-management, cloud-solutions or complete-platform"},
			&cli.StringFlag{Name: "challenges", Required: true, Usage: "current challenges"},
			&cli.StringFlag{Name: "preferred-time", Required: true, Usage: "morning, afternoon, evening or flexible"},
		},
		Action: run(func(ctx context.Context, a *app, c *cli.Command) error {
			in := client.DemoRequestForm{
				Name:              c.String("name"),
				Email:             c.String("email"),
				Company:           c.String("company"),
				Phone:             c.String("phone"),
				CompanySize:       c.String("company-size"),
				PrimaryInterest:   c.String("interest"),
				CurrentChallenges: c.String("challenges"),
				PreferredTime:     c.String("preferred-time"),
			}
			var receipt *client.Receipt
			err := submit(ctx, a, in, func(ctx context.Context, v client.DemoRequestForm) error {
				var err error
				receipt, err = a.client.SubmitDemoRequest(ctx, v)
				return err
			})
			if err != nil {
				return err
			}
			return printReceipt(a, receipt)
		}),
	}
}

func printReceipt(a *app, r *client.Receipt) error {
	if a.json {
		return printJSON(r)
	}
	fmt.Printf("%s (reference %s)\n", r.Message, r.ID)
	return nil
}
