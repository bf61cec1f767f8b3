package web

import (
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"trading-journal/internal/auth"
	"trading-journal/internal/journal"
	"trading-journal/internal/metrics"
	"trading-journal/internal/models"
)

const viewAll = "all"

var tabs = []struct{ Key, Label string }{
	{"overview", "Overview"},
	{"psychology", "Psychology"},
	{"strategy", "Strategy"},
	{"time", "Time"},
}

var notices = map[string]string{
	"trade-logged":    "Trade logged.",
	"account-added":   "Account added.",
	"account-deleted": "Account deleted along with its trades.",
}

type link struct {
	Label  string
	Href   string
	Active bool
}

type column struct {
	Label  string
	Href   string
	Active bool
	Desc   bool
}

type dashboardPage struct {
	User      string
	Accounts  []models.Account
	View      string
	Selected  *models.Account
	Tab       string
	Tabs      []link
	Dashboard metrics.Dashboard
	Trades    []models.Trade
	Columns   []column
	Notice    string
	Form      *formState
	Options   formOptions
	Today     string
}

// parseView resolves the view query value against the owner's accounts.
func parseView(raw string, accounts []models.Account) (journal.View, *models.Account, error) {
	if raw == "" || raw == viewAll {
		return journal.AllAccounts, nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return journal.View{}, nil, journal.ErrAccountNotFound
	}
	for i := range accounts {
		if uint64(accounts[i].ID) == id {
			return journal.View{AccountID: accounts[i].ID}, &accounts[i], nil
		}
	}
	return journal.View{}, nil, journal.ErrAccountNotFound
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.renderDashboard(w, r, http.StatusOK, nil)
}

// renderDashboard draws the dashboard for the view named in the request. A
// non-nil form is a rejected submission shown back with its messages.
func (s *Server) renderDashboard(w http.ResponseWriter, r *http.Request, status int, form *formState) {
	ctx := r.Context()
	user := auth.FromContext(ctx).User

	viewKey := r.FormValue("view")
	if form != nil {
		viewKey = form.Value("view")
	}

	accounts, err := s.store.ListAccounts(ctx, user)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	view, selected, err := parseView(viewKey, accounts)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	trades, err := s.store.ListTrades(ctx, user, view)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}

	q := r.URL.Query()
	viewValue := viewAll
	if selected != nil {
		viewValue = strconv.FormatUint(uint64(selected.ID), 10)
	}
	tab := tabKey(q.Get("tab"))
	sortKey, desc := tradeOrder(q.Get("sort"), q.Get("order"))

	page := dashboardPage{
		User:      user,
		Accounts:  accounts,
		View:      viewValue,
		Selected:  selected,
		Tab:       tab,
		Dashboard: metrics.Build(trades, selected),
		Trades:    sortTrades(trades, sortKey, desc),
		Notice:    notices[q.Get("notice")],
		Form:      form,
		Options:   s.options,
		Today:     time.Now().Format(dateLayout),
	}
	for _, t := range tabs {
		page.Tabs = append(page.Tabs, link{
			Label:  t.Label,
			Href:   dashboardURL(viewValue, t.Key, sortKey, desc, ""),
			Active: t.Key == tab,
		})
	}
	for _, c := range tradeColumns {
		nextDesc := !(c.key == sortKey && desc)
		page.Columns = append(page.Columns, column{
			Label:  c.label,
			Href:   dashboardURL(viewValue, tab, c.key, nextDesc, ""),
			Active: c.key == sortKey,
			Desc:   desc,
		})
	}

	s.render(w, r, status, "dashboard", page)
}

func (s *Server) handleDashboardAPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := auth.FromContext(ctx).User

	accounts, err := s.store.ListAccounts(ctx, user)
	if err != nil {
		s.failJSON(w, r, err)
		return
	}
	view, selected, err := parseView(r.URL.Query().Get("view"), accounts)
	if err != nil {
		s.failJSON(w, r, err)
		return
	}
	trades, err := s.store.ListTrades(ctx, user, view)
	if err != nil {
		s.failJSON(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics.Build(trades, selected))
}

func tabKey(raw string) string {
	for _, t := range tabs {
		if t.Key == raw {
			return raw
		}
	}
	return tabs[0].Key
}

// dashboardURL builds a link back to the dashboard preserving the current selection.
func dashboardURL(view, tab, sortKey string, desc bool, notice string) string {
	q := url.Values{}
	if view != "" && view != viewAll {
		q.Set("view", view)
	}
	if tab != "" && tab != tabs[0].Key {
		q.Set("tab", tab)
	}
	if sortKey != "" && (sortKey != defaultSort || !desc) {
		q.Set("sort", sortKey)
		if desc {
			q.Set("order", "desc")
		} else {
			q.Set("order", "asc")
		}
	}
	if notice != "" {
		q.Set("notice", notice)
	}
	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}

const defaultSort = "id"

var tradeColumns = []struct {
	key   string
	label string
	less  func(a, b models.Trade) bool
}{
	{"id", "#", func(a, b models.Trade) bool { return a.ID < b.ID }},
	{"entry_date", "Date", func(a, b models.Trade) bool { return a.EntryDate.Before(b.EntryDate) }},
	{"symbol", "Symbol", func(a, b models.Trade) bool { return a.Symbol < b.Symbol }},
	{"direction", "Direction", func(a, b models.Trade) bool { return a.Direction < b.Direction }},
	{"quantity", "Lots", func(a, b models.Trade) bool { return a.Quantity.LessThan(b.Quantity) }},
	{"pnl", "PnL", func(a, b models.Trade) bool { return a.PnL.LessThan(b.PnL) }},
	{"status", "Status", func(a, b models.Trade) bool { return a.Status < b.Status }},
	{"session", "Session", func(a, b models.Trade) bool { return a.Session < b.Session }},
	{"setup", "Setup", func(a, b models.Trade) bool { return a.Setup < b.Setup }},
	{"trend", "Trend", func(a, b models.Trade) bool { return a.Trend < b.Trend }},
	{"rules_followed", "Rules", func(a, b models.Trade) bool { return a.RulesFollowed < b.RulesFollowed }},
	{"proper_sl", "Proper SL", func(a, b models.Trade) bool { return a.ProperSL < b.ProperSL }},
}

// tradeOrder validates the sort query parameters; the default is newest id first.
func tradeOrder(sortKey, order string) (string, bool) {
	for _, c := range tradeColumns {
		if c.key == sortKey {
			return sortKey, !strings.EqualFold(order, "asc")
		}
	}
	return defaultSort, true
}

// sortTrades returns a sorted copy; ties keep ascending id order.
func sortTrades(trades []models.Trade, key string, desc bool) []models.Trade {
	less := tradeColumns[0].less
	for _, c := range tradeColumns {
		if c.key == key {
			less = c.less
		}
	}

	out := make([]models.Trade, len(trades))
	copy(out, trades)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if desc {
			a, b = b, a
		}
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FormFor returns the rejected form if it is the one named, so other forms render blank.
func (p dashboardPage) FormFor(name string) *formState {
	if p.Form.Is(name) {
		return p.Form
	}
	return nil
}

// AccountSelected reports whether id should be preselected in the trade form.
func (p dashboardPage) AccountSelected(id uint) bool {
	if f := p.FormFor("trade"); f != nil {
		return f.Value("account_id") == strconv.FormatUint(uint64(id), 10)
	}
	return p.Selected != nil && p.Selected.ID == id
}
