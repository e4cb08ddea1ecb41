// Package assistant is the conversation engine: it dispatches each inbound
// message through an ordered handler chain and always terminates in a
// plain-language reply, whatever its collaborators do.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/campusfinds/campusfinds/plugin/assistant/format"
	"github.com/campusfinds/campusfinds/plugin/assistant/intent"
	"github.com/campusfinds/campusfinds/plugin/assistant/retrieval"
	"github.com/campusfinds/campusfinds/plugin/assistant/sanitize"
	"github.com/campusfinds/campusfinds/plugin/assistant/session"
	"github.com/campusfinds/campusfinds/plugin/assistant/timeout"
	"github.com/campusfinds/campusfinds/internal/observability"
	"github.com/campusfinds/campusfinds/store"
)

// ApologyReply is what the user sees when generation fails. Fixed so a
// provider error can never leak through.
const ApologyReply = "Sorry, I'm having trouble answering right now. Please try again in a moment."

// promptHistoryTurns is how many recent turns the fallback prompt carries.
const promptHistoryTurns = 6

// promptRecentListings caps the listings embedded in the fallback prompt.
const promptRecentListings = 10

// identityFacts grounds the generative fallback so platform metadata is
// stated, not guessed.
const identityFacts = `CampusFinds is a campus marketplace where students buy, sell, and trade with other students at their university. It was founded by students and is free to use. Listings are organized into categories: For Sale, Housing, Jobs, Services, Events, and Community.`

// Generator produces text for the generic fallback. A single call, bounded
// by the implementation's timeout, never retried by the caller.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// MessageStore persists conversation turns.
type MessageStore interface {
	CreateChatMessage(ctx context.Context, create *store.ChatMessage) (*store.ChatMessage, error)
}

// Request is one inbound message with its resolved conversation state.
type Request struct {
	UserID    int32
	SessionID int32
	Message   string
	Conv      *session.ConversationContext
}

// handler is one entry of the ordered dispatch chain. It returns ok=false
// when it does not apply.
type handler struct {
	name  string
	apply func(o *Orchestrator, ctx context.Context, req *Request) (string, bool)
}

// Orchestrator routes messages to the right reply strategy.
type Orchestrator struct {
	extractor *intent.Extractor
	gateway   *retrieval.Gateway
	listings  retrieval.ListingStore
	messages  MessageStore
	generator Generator
	logger    *slog.Logger

	handlers []handler
}

// NewOrchestrator wires the conversation engine. generator may be nil, in
// which case the generic fallback answers with a static reply.
func NewOrchestrator(listings retrieval.ListingStore, messages MessageStore, generator Generator, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		extractor: intent.NewExtractor(),
		gateway:   retrieval.NewGateway(listings, logger),
		listings:  listings,
		messages:  messages,
		generator: generator,
		logger:    logger,
	}
	o.handlers = []handler{
		{"fixed-answer", (*Orchestrator).handleFixedAnswer},
		{"my-listings", (*Orchestrator).handleMyListings},
		{"search", (*Orchestrator).handleSearch},
		{"generic-fallback", (*Orchestrator).handleGenericFallback},
	}
	return o
}

// fixedAnswer pairs an identity-question pattern with its canonical reply.
// These facts must never come from the generative collaborator.
type fixedAnswer struct {
	pattern *regexp.Regexp
	answer  string
}

var fixedAnswers = []fixedAnswer{
	{
		regexp.MustCompile(`(?i)^\s*what(?:'s| is) campusfinds\s*[?!.]*\s*$`),
		"CampusFinds is a marketplace built for students: buy, sell, and trade with people at your university. Listings cover For Sale, Housing, Jobs, Services, Events, and Community.",
	},
	{
		regexp.MustCompile(`(?i)^\s*who (?:is the founder|founded|made|created|built) (?:of )?campusfinds\s*[?!.]*\s*$`),
		"CampusFinds was founded by students who wanted a safer way to buy and sell on campus.",
	},
	{
		regexp.MustCompile(`(?i)^\s*how does campusfinds work\s*[?!.]*\s*$`),
		"Post what you're selling with a photo and a price, or search what other students are offering. Everything is organized by campus and category, and you message sellers directly.",
	},
	{
		regexp.MustCompile(`(?i)^\s*is campusfinds free\s*[?!.]*\s*$`),
		"Yes, CampusFinds is completely free for students.",
	},
}

var myListingsPhrases = []string{
	"my posts",
	"my listings",
	"my items",
	"my ads",
	"what am i selling",
	"my stuff for sale",
}

// broadInterestKeywords is the weak heuristic that routes a message into
// search even when the extractor found no structured intent.
var broadInterestKeywords = []string{
	"buy",
	"sell",
	"selling",
	"sale",
	"cheap",
	"deal",
	"price",
	"available",
	"anyone have",
}

// ProcessMessage runs the dispatch chain and returns the reply. The user
// message is persisted before dispatch and the reply after; both writes are
// best-effort so a store hiccup never blocks the conversation. A reply
// computed after the caller cancelled is not persisted.
func (o *Orchestrator) ProcessMessage(ctx context.Context, req *Request) string {
	if req.Conv == nil {
		req.Conv = session.CreateInitialContext(nil)
	}

	o.persistMessage(ctx, req.SessionID, store.ChatMessageRoleUser, req.Message)

	var reply string
	start := time.Now()
	for _, h := range o.handlers {
		if r, ok := h.apply(o, ctx, req); ok {
			o.logger.DebugContext(ctx, "message handled",
				slog.String("handler", h.name),
				slog.Int("session_id", int(req.SessionID)),
				slog.String("message", logPreview(req.Message)))
			observability.GlobalMetrics().RecordRequest(h.name, time.Since(start))
			reply = r
			break
		}
	}
	if reply == "" {
		reply = ApologyReply
	}

	if ctx.Err() == nil {
		o.persistMessage(ctx, req.SessionID, store.ChatMessageRoleAssistant, reply)
	}
	return reply
}

// logPreview shortens user text for log lines.
func logPreview(s string) string {
	r := []rune(s)
	if len(r) <= timeout.MaxTruncateLength {
		return s
	}
	return string(r[:timeout.MaxTruncateLength]) + "..."
}

func (o *Orchestrator) persistMessage(ctx context.Context, sessionID int32, role store.ChatMessageRole, content string) {
	if o.messages == nil || sessionID == 0 {
		return
	}
	if _, err := o.messages.CreateChatMessage(ctx, &store.ChatMessage{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
	}); err != nil {
		o.logger.WarnContext(ctx, "failed to persist chat message",
			slog.Int("session_id", int(sessionID)),
			slog.String("role", string(role)),
			slog.String("error", err.Error()))
	}
}

func (o *Orchestrator) handleFixedAnswer(_ context.Context, req *Request) (string, bool) {
	for _, fa := range fixedAnswers {
		if fa.pattern.MatchString(req.Message) {
			return fa.answer, true
		}
	}
	return "", false
}

func (o *Orchestrator) handleMyListings(ctx context.Context, req *Request) (string, bool) {
	if req.UserID == 0 {
		return "", false
	}
	lowered := strings.ToLower(req.Message)
	matched := false
	for _, phrase := range myListingsPhrases {
		if strings.Contains(lowered, phrase) {
			matched = true
			break
		}
	}
	if !matched {
		return "", false
	}

	find := &store.FindListing{SellerID: &req.UserID}
	if campus, _ := o.extractor.CampusScope(req.Message, req.userUniversity()); campus != "" {
		find.Campus = &campus
	}
	listings, err := o.listings.ListListings(ctx, find)
	if err != nil {
		o.logger.WarnContext(ctx, "seller listing lookup failed",
			slog.Int("user_id", int(req.UserID)),
			slog.String("error", err.Error()))
		listings = nil
	}

	enhanced := make([]*retrieval.EnhancedListing, 0, len(listings))
	for _, l := range listings {
		enhanced = append(enhanced, retrieval.Enhance(l))
	}
	return format.FormatSellerListings(enhanced), true
}

func (o *Orchestrator) handleSearch(ctx context.Context, req *Request) (string, bool) {
	university := req.userUniversity()
	si := o.extractor.Extract(req.Message, university)
	if si == nil {
		if !containsBroadInterest(req.Message) {
			return "", false
		}
		campus, all := o.extractor.CampusScope(req.Message, university)
		si = &intent.SearchIntent{
			Query:             strings.TrimSpace(req.Message),
			Campus:            campus,
			SearchAllCampuses: all,
		}
	}

	filter := retrieval.Filter{
		Category:    si.Category,
		Subcategory: si.Subcategory,
		Campus:      si.Campus,
	}
	results := o.gateway.Search(ctx, si.Query, university, filter, si.SearchAllCampuses)

	reply := format.FormatResultSet(results, scopeLabel(si, university), len(results))
	if si.CorrectionNote != "" {
		reply = si.CorrectionNote + "\n\n" + reply
	}
	return reply, true
}

func (o *Orchestrator) handleGenericFallback(ctx context.Context, req *Request) (string, bool) {
	// The denylist applies to the inbound question too: sensitive topics
	// get the refusal without ever reaching the generator.
	if sanitize.ContainsSensitive(req.Message) {
		return sanitize.RefusalMessage, true
	}
	if o.generator == nil {
		return "I can help you search listings, check your posts, or browse categories like For Sale, Housing, and Jobs. What are you looking for?", true
	}

	reply, err := o.generator.Generate(ctx, o.buildPrompt(req))
	if err != nil {
		o.logger.WarnContext(ctx, "generation failed",
			slog.Int("session_id", int(req.SessionID)),
			slog.String("error", err.Error()))
		observability.GlobalMetrics().RecordFailure("generic-fallback")
		return ApologyReply, true
	}
	return sanitize.Sanitize(reply), true
}

// buildPrompt grounds the generator with platform facts, the user profile,
// a marketplace snapshot, and the recent conversation.
func (o *Orchestrator) buildPrompt(req *Request) string {
	var b strings.Builder

	b.WriteString("You are the CampusFinds assistant. Answer briefly, using only the facts below.\n\n")
	b.WriteString("Platform facts: ")
	b.WriteString(identityFacts)
	b.WriteString("\n\n")

	if u := req.Conv.User; u != nil {
		fmt.Fprintf(&b, "User: %s", u.Name)
		if u.University != "" {
			fmt.Fprintf(&b, " (%s)", u.University)
		}
		if u.PostsCount > 0 {
			fmt.Fprintf(&b, ". Active posts: %d (%d on their campus)", u.PostsCount, u.UniversityPostsCount)
		}
		b.WriteString("\n\n")
	}

	if mc := req.Conv.Marketplace; mc != nil {
		fmt.Fprintf(&b, "Marketplace: %d active listings.\n", mc.TotalListings)
		for _, cc := range mc.PopularCategories {
			fmt.Fprintf(&b, "- %s: %d listings\n", cc.Category, cc.Count)
		}
		recent := mc.RecentListings
		if len(recent) > promptRecentListings {
			recent = recent[:promptRecentListings]
		}
		if len(recent) > 0 {
			b.WriteString("Recent listings:\n")
			for _, l := range recent {
				writePromptListing(&b, l)
			}
		}
		campusRecent := mc.UniversityListings
		if len(campusRecent) > promptRecentListings {
			campusRecent = campusRecent[:promptRecentListings]
		}
		if len(campusRecent) > 0 {
			b.WriteString("Recent listings on the user's campus:\n")
			for _, l := range campusRecent {
				writePromptListing(&b, l)
			}
		}
		b.WriteString("\n")
	}

	if turns := req.Conv.LastTurns(promptHistoryTurns); len(turns) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, m := range turns {
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "User message: %s\n", req.Message)
	return b.String()
}

func writePromptListing(b *strings.Builder, l session.RecentListing) {
	price := "Free"
	if l.Price != nil && *l.Price > 0 {
		price = fmt.Sprintf("$%.2f", *l.Price)
	}
	fmt.Fprintf(b, "- %s | %s | %s | %s | %s\n", l.Title, price, l.Category, l.Campus, l.PostURL)
}

// ExtractSearchIntent exposes intent extraction for callers outside the
// dispatch chain.
func (o *Orchestrator) ExtractSearchIntent(message, userUniversity string) *intent.SearchIntent {
	return o.extractor.Extract(message, userUniversity)
}

func (req *Request) userUniversity() string {
	if req.Conv != nil && req.Conv.User != nil {
		return req.Conv.User.University
	}
	return ""
}

func containsBroadInterest(message string) bool {
	lowered := strings.ToLower(message)
	for _, kw := range broadInterestKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// scopeLabel names where a search looked, for the formatter.
func scopeLabel(si *intent.SearchIntent, userUniversity string) string {
	switch {
	case si.Campus != "":
		return "at " + si.Campus
	case si.SearchAllCampuses:
		return "in the entire marketplace"
	case userUniversity != "":
		return "at " + userUniversity
	default:
		return "on your campus"
	}
}
