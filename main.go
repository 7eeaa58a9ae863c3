package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/km-arc/go-laravel-container/framework/app"
	"github.com/km-arc/go-laravel-container/framework/container"
	"github.com/km-arc/go-laravel-container/framework/routing"
)

// ── Services ─────────────────────────────────────────────────────────────────

// Mailer sends mail.
type Mailer interface {
	Send(to, body string) error
}

// SMTPMailer is the default Mailer.
type SMTPMailer struct {
	Host   string
	Port   int
	logger *zap.Logger
}

func NewSMTPMailer(host string, port int, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{Host: host, Port: port, logger: logger}
}

func (m *SMTPMailer) Send(to, body string) error {
	m.logger.Info("mail sent", zap.String("to", to), zap.String("host", m.Host), zap.Int("port", m.Port))
	return nil
}

// Report is a tagged dashboard widget.
type Report interface{ Name() string }

type CPUReport struct{}

func (*CPUReport) Name() string { return "cpu" }

type MemoryReport struct{}

func (*MemoryReport) Name() string { return "memory" }

// ── Controllers ──────────────────────────────────────────────────────────────

type UserController struct {
	mailer Mailer
}

func NewUserController(mailer Mailer) *UserController {
	return &UserController{mailer: mailer}
}

func (u *UserController) Index() []map[string]any {
	return []map[string]any{
		{"id": 1, "name": "Alice"},
		{"id": 2, "name": "Bob"},
	}
}

func (u *UserController) Show(id string) map[string]any {
	return map[string]any{"id": id}
}

func (u *UserController) Store() (routing.Response, error) {
	if err := u.mailer.Send("admin@example.com", "new user"); err != nil {
		return routing.Response{}, err
	}
	return routing.Response{Status: 201, Data: map[string]any{"created": true}}, nil
}

type DashboardController struct {
	reports []Report
}

func NewDashboardController(reports ...Report) *DashboardController {
	return &DashboardController{reports: reports}
}

func (d *DashboardController) Index() []string {
	out := make([]string, 0, len(d.reports))
	for _, r := range d.reports {
		out = append(out, r.Name())
	}
	return out
}

// ── Wiring ───────────────────────────────────────────────────────────────────

func register(a *app.Application) error {
	smtp := container.TypeOf[*SMTPMailer]()
	dashboard := container.TypeOf[*DashboardController]()

	steps := []func() error{
		func() error {
			return a.Define(NewSMTPMailer, container.Arg("host"), container.Arg("port").Default(25), container.Arg("logger"))
		},
		func() error { return a.Define(NewUserController) },
		func() error { return a.Define(NewDashboardController) },
		func() error { return a.Singleton(container.TypeOf[Mailer](), smtp) },
		func() error { return a.When(smtp).Needs("$host").GiveConfig("mail.host", "localhost") },
		func() error { return a.When(smtp).Needs("$port").GiveConfig("mail.port", 25) },
		func() error { return a.Bind("users", container.TypeOf[*UserController]()) },
		func() error { return a.DefineMethod(container.TypeOf[*UserController](), "Show", container.Arg("id")) },
		func() error {
			a.Tag([]any{container.TypeOf[*CPUReport](), container.TypeOf[*MemoryReport]()}, "reports")
			return a.When(dashboard).Needs(container.TypeOf[Report]()).GiveTagged("reports")
		},
		func() error { return a.Bind("dashboard", dashboard) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	r := a.Router()
	r.Prefix("/api/v1", func(api *routing.Router) {
		api.Get("/users", "users@Index")
		api.Post("/users", "users@Store")
		api.Get("/users/{id}", "users@Show")
		api.Get("/dashboard", "dashboard@Index")
	})
	return nil
}

func main() {
	application, err := app.New() // loads .env automatically
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := register(application); err != nil {
		application.Logger().Fatal("wiring failed", zap.Error(err))
	}
	if err := application.Run(); err != nil {
		application.Logger().Fatal("server error", zap.Error(err))
	}
}
