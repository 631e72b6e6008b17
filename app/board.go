package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/kidandcat/tracker/internal/model"
	"github.com/kidandcat/tracker/internal/render"
	"github.com/kidandcat/tracker/internal/store"
)

// BoardView is a kanban board over the shared store. It never keeps its own
// copy of issues; every render reads the last snapshot the store published.
type BoardView struct {
	app.Compo

	store       *store.Store
	snap        store.Snapshot
	unsubscribe func()

	// Login form
	email    string
	password string

	// New issue form
	newTitle string

	// Detail panel
	selectedID string
	comment    string

	errMsg string
}

func (c *BoardView) OnMount(ctx app.Context) {
	c.snap = c.store.Snapshot()
	c.unsubscribe = c.store.Subscribe(func(s store.Snapshot) {
		ctx.Dispatch(func(ctx app.Context) {
			c.snap = s
		})
	})

	ctx.Async(func() {
		c.store.RestoreSession(context.Background())
	})
}

func (c *BoardView) OnDismount() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

// run executes a store call off the UI goroutine and reports its error.
func (c *BoardView) run(ctx app.Context, fn func(context.Context) error) {
	ctx.Async(func() {
		err := fn(context.Background())
		ctx.Dispatch(func(ctx app.Context) {
			c.errMsg = ""
			if err != nil {
				c.errMsg = err.Error()
			}
		})
	})
}

func (c *BoardView) onLogin(ctx app.Context, e app.Event) {
	e.PreventDefault()
	email, password := c.email, c.password
	ctx.Async(func() {
		ok := c.store.Login(context.Background(), email, password)
		ctx.Dispatch(func(ctx app.Context) {
			c.password = ""
			c.errMsg = ""
			if !ok {
				c.errMsg = "Unknown email or password"
			}
		})
	})
}

func (c *BoardView) onLogout(ctx app.Context, e app.Event) {
	c.selectedID = ""
	c.run(ctx, c.store.Logout)
}

func (c *BoardView) onCreateIssue(ctx app.Context, e app.Event) {
	e.PreventDefault()
	title := strings.TrimSpace(c.newTitle)
	if title == "" {
		return
	}
	c.newTitle = ""
	c.run(ctx, func(ctx context.Context) error {
		return c.store.CreateIssue(ctx, model.IssueInput{Title: title})
	})
}

func (c *BoardView) onAdvance(ctx app.Context, issue model.Issue) {
	next := issue.Status.Next()
	if next == issue.Status {
		return
	}
	c.run(ctx, func(ctx context.Context) error {
		return c.store.UpdateIssueStatus(ctx, issue.ID, next)
	})
}

func (c *BoardView) onAddComment(ctx app.Context, e app.Event) {
	e.PreventDefault()
	id, text := c.selectedID, c.comment
	if id == "" || strings.TrimSpace(text) == "" {
		return
	}
	c.comment = ""
	c.run(ctx, func(ctx context.Context) error {
		return c.store.AddComment(ctx, id, text)
	})
}

func (c *BoardView) userName(id string) string {
	for _, u := range c.snap.Users {
		if u.ID == id {
			return u.Name
		}
	}
	return ""
}

func (c *BoardView) selected() (model.Issue, bool) {
	for _, i := range c.snap.Issues {
		if i.ID == c.selectedID {
			return i, true
		}
	}
	return model.Issue{}, false
}

func (c *BoardView) Render() app.UI {
	if c.snap.User == nil {
		return c.renderLogin()
	}

	return app.Div().Class("board-page").Body(
		c.renderHeader(),
		app.If(c.errMsg != "", func() app.UI {
			return app.Div().Class("error-banner").Text(c.errMsg)
		}),
		app.Form().Class("new-issue").OnSubmit(c.onCreateIssue).Body(
			app.Input().
				Type("text").
				Placeholder("New issue title").
				Value(c.newTitle).
				OnChange(c.ValueTo(&c.newTitle)),
			app.Button().Type("submit").Text("Add"),
		),
		app.Div().Class("board").Body(
			app.Range(model.Statuses).Slice(func(i int) app.UI {
				return c.renderColumn(model.Statuses[i])
			}),
		),
		app.If(c.selectedID != "", func() app.UI {
			return c.renderDetail()
		}),
	)
}

func (c *BoardView) renderLogin() app.UI {
	if c.snap.Session == store.Restoring && c.snap.IsLoading {
		return app.Div().Class("login-page").Text("Restoring session...")
	}

	return app.Div().Class("login-page").Body(
		app.H1().Text("Sign in"),
		app.If(c.snap.Session == store.Restoring, func() app.UI {
			return app.P().Class("hint").Text("Server unreachable. Sign in again or retry later.")
		}),
		app.If(c.errMsg != "", func() app.UI {
			return app.Div().Class("error-banner").Text(c.errMsg)
		}),
		app.Form().OnSubmit(c.onLogin).Body(
			app.Input().
				Type("email").
				Placeholder("Email").
				Value(c.email).
				OnChange(c.ValueTo(&c.email)),
			app.Input().
				Type("password").
				Placeholder("Password").
				Value(c.password).
				OnChange(c.ValueTo(&c.password)),
			app.Button().Type("submit").Text("Sign in"),
		),
	)
}

func (c *BoardView) renderHeader() app.UI {
	mode := "offline"
	if c.snap.UseAPI {
		mode = "online"
	}

	return app.Header().Class("board-header").Body(
		app.Span().Class("user").Text(c.snap.User.Name),
		app.Span().Class("mode mode-"+mode).Text(mode),
		app.If(c.snap.IsLoading, func() app.UI {
			return app.Span().Class("spinner").Text("Loading...")
		}),
		app.Button().Class("logout").Text("Sign out").OnClick(c.onLogout),
	)
}

func (c *BoardView) renderColumn(status model.Status) app.UI {
	var issues []model.Issue
	for _, i := range c.snap.Issues {
		if i.Status == status {
			issues = append(issues, i)
		}
	}

	return app.Div().Class("column column-"+string(status)).Body(
		app.H2().Text(fmt.Sprintf("%s (%d)", status.Label(), len(issues))),
		app.Range(issues).Slice(func(i int) app.UI {
			return c.renderCard(issues[i])
		}),
	)
}

func (c *BoardView) renderCard(issue model.Issue) app.UI {
	classes := "card priority-" + string(issue.Priority)
	if issue.ID == c.selectedID {
		classes += " selected"
	}
	assignee := ""
	if issue.AssigneeID != nil {
		assignee = c.userName(*issue.AssigneeID)
	}

	return app.Div().
		Class(classes).
		OnClick(func(ctx app.Context, e app.Event) {
			c.selectedID = issue.ID
		}).
		Body(
			app.Div().Class("card-title").Text(issue.Title),
			app.Div().Class("card-meta").Body(
				app.If(assignee != "", func() app.UI {
					return app.Span().Class("assignee").Text(assignee)
				}),
				app.Span().Class("comments").Text(fmt.Sprintf("%d", len(issue.Comments))),
			),
			app.If(issue.Status != model.StatusDone, func() app.UI {
				return app.Button().
					Class("advance").
					Title("Move to "+issue.Status.Next().Label()).
					Text("→").
					OnClick(func(ctx app.Context, e app.Event) {
						e.Call("stopPropagation")
						c.onAdvance(ctx, issue)
					})
			}),
		)
}

func (c *BoardView) renderDetail() app.UI {
	issue, ok := c.selected()
	if !ok {
		return app.Div()
	}

	return app.Aside().Class("detail").Body(
		app.Button().Class("close").Text("×").OnClick(func(ctx app.Context, e app.Event) {
			c.selectedID = ""
		}),
		app.H2().Text(issue.Title),
		app.Div().Class("detail-meta").Text(fmt.Sprintf("%s · %s priority", issue.Status.Label(), issue.Priority)),
		app.Raw(`<div class="description">`+render.MustMarkdown(issue.Description)+`</div>`),
		app.H3().Text("Comments"),
		app.Ul().Class("comments").Body(
			app.Range(issue.Comments).Slice(func(i int) app.UI {
				cm := issue.Comments[i]
				return app.Li().Body(
					app.Strong().Text(cm.AuthorName),
					app.Raw(`<div class="comment-body">`+render.MustMarkdown(cm.Text)+`</div>`),
				)
			}),
		),
		app.Form().OnSubmit(c.onAddComment).Body(
			app.Textarea().
				Placeholder("Add a comment").
				Text(c.comment).
				OnChange(c.ValueTo(&c.comment)),
			app.Button().Type("submit").Text("Comment"),
		),
	)
}
