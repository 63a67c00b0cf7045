package listing

// Rule is one step of a classification chain: when When holds for the facts
// of an item, the item gets status Then.
type Rule[F any] struct {
	Name string
	When func(facts F, asOf string) bool
	Then Status
}

// Evaluate runs rules in order and returns the outcome of the first rule that
// matches. No later rule is consulted. Items matching no rule are Published.
func Evaluate[F any](rules []Rule[F], facts F, asOf string) Status {
	for _, r := range rules {
		if r.When(facts, asOf) {
			return r.Then
		}
	}
	return Published
}

// Match is like Evaluate but also returns the name of the deciding rule,
// "" when no rule matched.
func Match[F any](rules []Rule[F], facts F, asOf string) (Status, string) {
	for _, r := range rules {
		if r.When(facts, asOf) {
			return r.Then, r.Name
		}
	}
	return Published, ""
}

// Window is a pair of compact (YYYYMMDD) dates. Either side may be "".
type Window struct {
	Start string
	End   string
}

// NewWindow compacts raw start and end cells.
func NewWindow(start, end string) Window {
	return Window{Start: CompactDate(start), End: CompactDate(end)}
}

// Unset reports whether neither date is set.
func (w Window) Unset() bool { return w.Start == "" && w.End == "" }

// NotStarted reports whether the window opens after asOf.
func (w Window) NotStarted(asOf string) bool { return w.Start != "" && w.Start > asOf }

// Ended reports whether the window closed before asOf.
func (w Window) Ended(asOf string) bool { return w.End != "" && w.End < asOf }

// PeriodRules is the common date tail: no dates means Published, a future
// start means NotYetOpen and a past end means Closed.
func PeriodRules[F any](window func(F) Window) []Rule[F] {
	return []Rule[F]{
		{
			Name: "no sale period",
			When: func(f F, _ string) bool { return window(f).Unset() },
			Then: Published,
		},
		{
			Name: "sale not started",
			When: func(f F, asOf string) bool { return window(f).NotStarted(asOf) },
			Then: NotYetOpen,
		},
		{
			Name: "sale ended",
			When: func(f F, asOf string) bool { return window(f).Ended(asOf) },
			Then: Closed,
		},
	}
}

// OpenEndedPeriodRules is the date tail for channels where a missing end date
// publishes the item whatever its start. Otherwise a future start means
// NotYetOpen and a past end means Closed.
func OpenEndedPeriodRules[F any](window func(F) Window) []Rule[F] {
	return []Rule[F]{
		{
			Name: "no sale end",
			When: func(f F, _ string) bool { return window(f).End == "" },
			Then: Published,
		},
		{
			Name: "sale not started",
			When: func(f F, asOf string) bool { return window(f).NotStarted(asOf) },
			Then: NotYetOpen,
		},
		{
			Name: "sale ended",
			When: func(f F, asOf string) bool { return window(f).Ended(asOf) },
			Then: Closed,
		},
	}
}

// DisplayFirstRules checks the display window and consults the application
// window only while the display window has a running end date. A display
// window without an end publishes the item.
func DisplayFirstRules[F any](display, application func(F) Window) []Rule[F] {
	return []Rule[F]{
		{
			Name: "display not started",
			When: func(f F, asOf string) bool { return display(f).NotStarted(asOf) },
			Then: NotYetOpen,
		},
		{
			Name: "no display end",
			When: func(f F, _ string) bool { return display(f).End == "" },
			Then: Published,
		},
		{
			Name: "display ended",
			When: func(f F, asOf string) bool { return display(f).Ended(asOf) },
			Then: Closed,
		},
		{
			Name: "application not started",
			When: func(f F, asOf string) bool { return application(f).NotStarted(asOf) },
			Then: NotYetOpen,
		},
		{
			Name: "application ended",
			When: func(f F, asOf string) bool { return application(f).Ended(asOf) },
			Then: Closed,
		},
	}
}

// TwoPeriodRules checks a display window and then an application window.
func TwoPeriodRules[F any](display, application func(F) Window) []Rule[F] {
	return []Rule[F]{
		{
			Name: "display not started",
			When: func(f F, asOf string) bool { return display(f).NotStarted(asOf) },
			Then: NotYetOpen,
		},
		{
			Name: "display ended",
			When: func(f F, asOf string) bool { return display(f).Ended(asOf) },
			Then: Closed,
		},
		{
			Name: "application not started",
			When: func(f F, asOf string) bool { return application(f).NotStarted(asOf) },
			Then: NotYetOpen,
		},
		{
			Name: "application ended",
			When: func(f F, asOf string) bool { return application(f).Ended(asOf) },
			Then: Closed,
		},
	}
}

// Classifier maps an item code to a status for one channel.
type Classifier struct {
	// Rules lists the rule names in evaluation order.
	Rules []string

	classify func(code string, c *Context) (Status, string)
}

// Chain builds a Classifier from a fact extractor and an ordered rule list.
func Chain[F any](extract func(code string, c *Context) F, rules ...[]Rule[F]) Classifier {
	var all []Rule[F]
	for _, group := range rules {
		all = append(all, group...)
	}
	names := make([]string, len(all))
	for i, r := range all {
		names[i] = r.Name
	}
	return Classifier{
		Rules: names,
		classify: func(code string, c *Context) (Status, string) {
			return Match(all, extract(code, c), c.AsOf)
		},
	}
}

// Classify runs the chain. A zero Classifier yields Unimplemented.
func (cl Classifier) Classify(code string, c *Context) Status {
	st, _ := cl.Explain(code, c)
	return st
}

// Explain returns the status together with the name of the deciding rule.
func (cl Classifier) Explain(code string, c *Context) (Status, string) {
	if cl.classify == nil {
		return Unimplemented, ""
	}
	return cl.classify(code, c)
}

// Dispatch builds a Classifier that picks the chain to run per item, for
// channels whose feed comes in more than one layout. names lists the rules of
// every chain for display.
func Dispatch(pick func(code string, c *Context) Classifier, names []string) Classifier {
	return Classifier{
		Rules: names,
		classify: func(code string, c *Context) (Status, string) {
			return pick(code, c).Explain(code, c)
		},
	}
}
