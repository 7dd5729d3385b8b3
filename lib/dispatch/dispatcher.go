// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"github.com/bureau-foundation/nfdmgmt/lib/clock"
	"github.com/bureau-foundation/nfdmgmt/lib/command"
	"github.com/bureau-foundation/nfdmgmt/lib/face"
	"github.com/bureau-foundation/nfdmgmt/lib/name"
	"github.com/bureau-foundation/nfdmgmt/lib/packet"
	"github.com/bureau-foundation/nfdmgmt/lib/response"
	"github.com/bureau-foundation/nfdmgmt/lib/security"
)

// Verifier checks the signature of a command Interest.
type Verifier interface {
	Verify(interest *packet.Interest) (*command.Verified, error)
}

// Authorizer decides whether identity may use module.
type Authorizer interface {
	Authorize(identity name.Name, module string) bool
}

// FormatPolicy decides which signed Interest formats are accepted.
// Format B is always accepted.
type FormatPolicy struct {
	// AcceptLegacy accepts Format A for every module.
	AcceptLegacy bool

	// LegacyModules accepts Format A for the listed modules only.
	LegacyModules []string
}

// Allows reports whether a request in format may address module.
func (p FormatPolicy) Allows(format command.Format, module string) bool {
	if format != command.FormatA {
		return true
	}
	return p.AcceptLegacy || slices.Contains(p.LegacyModules, module)
}

// Options configures a Dispatcher.
type Options struct {
	// Verifier checks signatures and replay. Required.
	Verifier Verifier

	// Authorizer grants signers access to modules. It is consulted on
	// every request, so revocations apply to the next command.
	// Required.
	Authorizer Authorizer

	// Signer signs every response packet. Nil means DigestSha256.
	Signer security.Signer

	// Logger receives rejections at debug level and handler failures
	// at error level. Nil discards.
	Logger *slog.Logger

	// Clock versions datasets and expires cached responses. Nil means
	// the real clock.
	Clock clock.Clock

	// MaxPayload is the content limit per response packet. Zero means
	// response.DefaultMaxPayload.
	MaxPayload int

	// Freshness is the FreshnessPeriod of dataset packets.
	Freshness time.Duration

	FormatPolicy FormatPolicy

	// Post hands a continuation that completes after its handler
	// returned back to the event loop. Nil runs it on the calling
	// goroutine, which is only safe when every continuation is called
	// from the loop.
	Post func(task func()) bool

	// CacheSize and CacheLifetime bound the response cache. Zero
	// values take the package defaults.
	CacheSize     int
	CacheLifetime time.Duration
}

// DatasetHandler produces the full content of a status dataset.
type DatasetHandler func(prefix name.Name) ([]byte, error)

// Dispatcher routes management Interests. See the package
// documentation for the pipeline.
type Dispatcher struct {
	options Options
	logger  *slog.Logger
	clock   clock.Clock
	signer  security.Signer
	cache   *responseCache
	stats   Stats

	prefixes []name.Name
	commands map[string]ControlCommand
	datasets map[string]DatasetHandler
	sealed   bool

	lastVersion uint64

	// inflight holds the names of verified commands whose handler has
	// not completed. Retransmissions of those names are held back
	// until the response can be served from the cache.
	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

// New creates a dispatcher. Verifier and Authorizer are required.
func New(options Options) (*Dispatcher, error) {
	if options.Verifier == nil {
		return nil, errors.New("dispatch: Verifier is required")
	}
	if options.Authorizer == nil {
		return nil, errors.New("dispatch: Authorizer is required")
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	clk := options.Clock
	if clk == nil {
		clk = clock.Real()
	}
	signer := options.Signer
	if signer == nil {
		signer = security.DigestSigner{}
	}
	cache, err := newResponseCache(clk, options.CacheSize, options.CacheLifetime)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		options:  options,
		logger:   logger,
		clock:    clk,
		signer:   signer,
		cache:    cache,
		commands: make(map[string]ControlCommand),
		datasets: make(map[string]DatasetHandler),
		inflight: make(map[string]struct{}),
	}, nil
}

func handlerKey(module, verb string) string { return module + "/" + verb }

// AddTopPrefix starts accepting requests under prefix. Adding a prefix
// that is already registered has no effect.
func (d *Dispatcher) AddTopPrefix(prefix name.Name) error {
	if prefix.IsEmpty() {
		return errors.New("dispatch: top prefix is empty")
	}
	for _, existing := range d.prefixes {
		if existing.Equal(prefix) {
			return nil
		}
	}
	d.prefixes = append(d.prefixes, prefix)
	d.logger.Info("top prefix registered", "prefix", prefix.String())
	return nil
}

// RemoveTopPrefix stops accepting requests under prefix.
func (d *Dispatcher) RemoveTopPrefix(prefix name.Name) {
	d.prefixes = slices.DeleteFunc(d.prefixes, func(existing name.Name) bool {
		return existing.Equal(prefix)
	})
}

// TopPrefixes returns the registered top prefixes.
func (d *Dispatcher) TopPrefixes() []name.Name {
	return slices.Clone(d.prefixes)
}

// AddControlCommand registers a command handler. Panics if module/verb
// is already registered (as a command or a dataset), if the handler is
// nil, or if the dispatcher has been sealed.
func (d *Dispatcher) AddControlCommand(module, verb string, cmd ControlCommand) {
	d.checkRegistration(module, verb)
	if cmd.Handler == nil {
		panic(fmt.Sprintf("dispatch: nil handler for %s/%s", module, verb))
	}
	if cmd.Parse == nil {
		cmd.Parse = ParseParameters
	}
	d.commands[handlerKey(module, verb)] = cmd
}

// AddStatusDataset registers a dataset producer, with the same panics
// as AddControlCommand.
func (d *Dispatcher) AddStatusDataset(module, verb string, handler DatasetHandler) {
	d.checkRegistration(module, verb)
	if handler == nil {
		panic(fmt.Sprintf("dispatch: nil dataset handler for %s/%s", module, verb))
	}
	d.datasets[handlerKey(module, verb)] = handler
}

func (d *Dispatcher) checkRegistration(module, verb string) {
	if d.sealed {
		panic(fmt.Sprintf("dispatch: %s/%s registered after Seal", module, verb))
	}
	if module == "" || verb == "" {
		panic("dispatch: empty module or verb")
	}
	key := handlerKey(module, verb)
	_, isCommand := d.commands[key]
	_, isDataset := d.datasets[key]
	if isCommand || isDataset {
		panic(fmt.Sprintf("dispatch: duplicate handler for %s", key))
	}
}

// Seal ends registration. The daemon seals before serving.
func (d *Dispatcher) Seal() { d.sealed = true }

// Stats returns the dispatcher's counters.
func (d *Dispatcher) Stats() StatsSnapshot { return d.stats.Snapshot() }

// matchPrefix returns the longest top prefix of n.
func (d *Dispatcher) matchPrefix(n name.Name) (name.Name, bool) {
	var best name.Name
	found := false
	for _, prefix := range d.prefixes {
		if prefix.IsPrefixOf(n) && (!found || prefix.Len() > best.Len()) {
			best, found = prefix, true
		}
	}
	return best, found
}

// moduleVerb extracts the two generic components after prefix.
func moduleVerb(n name.Name, prefix name.Name) (module, verb string, ok bool) {
	if n.Len() < prefix.Len()+2 {
		return "", "", false
	}
	moduleComponent := n.At(prefix.Len())
	verbComponent := n.At(prefix.Len() + 1)
	if moduleComponent.Type() != name.TypeGeneric || verbComponent.Type() != name.TypeGeneric {
		return "", "", false
	}
	return string(moduleComponent.Value()), string(verbComponent.Value()), true
}

// HandleInterest processes one Interest received on from. Interests
// that cannot be decoded or fall outside every top prefix are dropped;
// everything else gets exactly one response (possibly segmented).
func (d *Dispatcher) HandleInterest(from face.Face, wire []byte) {
	d.stats.received.Add(1)

	interest, err := packet.DecodeInterest(wire)
	if err != nil {
		d.stats.dropped.Add(1)
		d.logger.Debug("dropping undecodable interest", "face", from.ID(), "error", err)
		return
	}
	prefix, ok := d.matchPrefix(interest.Name)
	if !ok {
		d.stats.dropped.Add(1)
		d.logger.Debug("dropping interest outside top prefixes", "face", from.ID(), "name", interest.Name.String())
		return
	}

	if cached, ok := d.cache.lookup(interest.Name); ok {
		d.stats.cacheHits.Add(1)
		for _, wire := range cached {
			d.sendWire(from, interest.Name, wire)
		}
		return
	}
	if d.isInflight(interest.Name) {
		d.stats.dropped.Add(1)
		d.logger.Debug("dropping retransmission of pending command", "face", from.ID(), "name", interest.Name.String())
		return
	}

	if interest.Name.Len() == prefix.Len()+2 {
		if module, verb, ok := moduleVerb(interest.Name, prefix); ok {
			if handler, ok := d.datasets[handlerKey(module, verb)]; ok {
				d.serveDataset(from, interest.Name, handler)
				return
			}
		}
	}
	if last := interest.Name.At(-1); interest.Name.Len() > prefix.Len()+2 && (last.IsVersion() || last.IsSegment()) {
		if module, verb, ok := moduleVerb(interest.Name, prefix); ok {
			if _, isDataset := d.datasets[handlerKey(module, verb)]; isDataset {
				// A segment that is no longer cached: the consumer
				// must restart from the unversioned name.
				d.stats.dropped.Add(1)
				d.logger.Debug("dropping request for expired dataset segment", "name", interest.Name.String())
				return
			}
		}
	}

	d.handleCommand(from, interest, prefix)
}

func (d *Dispatcher) handleCommand(from face.Face, interest *packet.Interest, prefix name.Name) {
	target := interest.Name
	logger := d.logger.With("face", from.ID(), "name", target.String())

	verified, err := d.options.Verifier.Verify(interest)
	if err != nil {
		logger.Debug("command rejected", "status", response.StatusSignatureError,
			"kind", command.KindOf(err).String(), "error", err)
		d.reply(from, target, response.New(response.StatusSignatureError, response.TextSignatureError), false)
		return
	}

	module, verb, ok := moduleVerb(verified.CommandName, prefix)
	if ok && !d.options.FormatPolicy.Allows(verified.Format, module) {
		logger.Debug("command rejected", "status", response.StatusSignatureError,
			"kind", command.FormatMismatch.String(), "format", verified.Format.String(), "module", module)
		d.reply(from, target, response.New(response.StatusSignatureError, response.TextSignatureError), true)
		return
	}

	cmd, found := d.commands[handlerKey(module, verb)]
	if !ok || !found {
		logger.Debug("command rejected", "status", response.StatusUnknownCommand)
		d.reply(from, target, response.New(response.StatusUnknownCommand, response.TextUnknownCommand), true)
		return
	}

	if !d.options.Authorizer.Authorize(verified.Identity, module) {
		logger.Debug("command rejected", "status", response.StatusForbidden,
			"identity", verified.Identity.String(), "module", module)
		d.reply(from, target, response.New(response.StatusForbidden, response.TextForbidden), true)
		return
	}

	request := &Request{
		Face:     from,
		Interest: interest,
		Command:  verified,
		Prefix:   prefix,
		Module:   module,
		Verb:     verb,
	}
	if err := cmd.Parse(request, cmd.Schema); err != nil {
		logger.Debug("command rejected", "status", response.StatusMalformedParameters, "error", err)
		d.reply(from, target, response.New(response.StatusMalformedParameters, response.TextMalformedParameters), true)
		return
	}

	d.invoke(cmd.Handler, request, logger)
}

// invoke runs handler and guarantees exactly one response for request.
// An outcome delivered before the handler returns, from any goroutine,
// is sent by invoke itself once the handler is back; later outcomes go
// through Options.Post. Either way the reply is produced on the loop.
func (d *Dispatcher) invoke(handler Handler, request *Request, logger *slog.Logger) {
	target := request.Interest.Name
	var (
		mu        sync.Mutex
		completed bool
		returned  bool
		early     *response.ControlResponse
	)
	send := func(outcome response.ControlResponse) {
		d.reply(request.Face, target, outcome, true)
	}
	done := func(outcome response.ControlResponse) {
		mu.Lock()
		if completed {
			mu.Unlock()
			logger.Warn("handler completed more than once", "code", outcome.Code)
			return
		}
		completed = true
		if !returned {
			early = &outcome
			mu.Unlock()
			return
		}
		mu.Unlock()

		if d.options.Post == nil {
			send(outcome)
			return
		}
		if !d.options.Post(func() { send(outcome) }) {
			logger.Debug("dropping response after shutdown", "code", outcome.Code)
			d.clearInflight(target)
		}
	}

	d.markInflight(target)
	err := d.runHandler(handler, request, done)

	mu.Lock()
	returned = true
	failed := err != nil && !completed
	if failed {
		completed = true
		internal := response.New(response.StatusInternalError, response.TextInternalError)
		early = &internal
	}
	outcome := early
	mu.Unlock()

	switch {
	case failed:
		logger.Error("handler failed", "module", request.Module, "verb", request.Verb, "error", err)
	case err != nil:
		logger.Error("handler failed after responding", "error", err)
	}
	if outcome != nil {
		send(*outcome)
	}
}

func (d *Dispatcher) markInflight(target name.Name) {
	d.inflightMu.Lock()
	d.inflight[target.String()] = struct{}{}
	d.inflightMu.Unlock()
}

func (d *Dispatcher) clearInflight(target name.Name) {
	d.inflightMu.Lock()
	delete(d.inflight, target.String())
	d.inflightMu.Unlock()
}

func (d *Dispatcher) isInflight(target name.Name) bool {
	d.inflightMu.Lock()
	defer d.inflightMu.Unlock()
	_, ok := d.inflight[target.String()]
	return ok
}

func (d *Dispatcher) runHandler(handler Handler, request *Request, done Continuation) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("handler panicked: %v\n%s", recovered, debug.Stack())
		}
	}()
	return handler(request, done)
}

// reply encodes, segments, signs and sends outcome. Outcomes of
// verified requests are cached: each segment under its own name, and
// the whole set under the request name so that a retransmission is
// answered identically.
func (d *Dispatcher) reply(to face.Face, target name.Name, outcome response.ControlResponse, verified bool) {
	d.stats.recordOutcome(outcome.Code)
	if verified {
		defer d.clearInflight(target)
	}
	packets, err := response.Encode(target, outcome, response.Options{
		MaxPayload:  d.options.MaxPayload,
		ContentType: packet.ContentTypeBlob,
		Signer:      d.signer,
	})
	if err != nil {
		d.logger.Error("encoding response failed", "name", target.String(), "error", err)
		return
	}
	wires := make([][]byte, len(packets))
	for i, data := range packets {
		wires[i] = data.Encode()
	}
	if verified {
		for i, data := range packets {
			d.cache.add(data.Name, wires[i])
		}
		if len(packets) > 1 {
			d.cache.add(target, wires...)
		}
	}
	for i, data := range packets {
		d.sendWire(to, data.Name, wires[i])
	}
}

func (d *Dispatcher) serveDataset(to face.Face, datasetName name.Name, handler DatasetHandler) {
	d.stats.datasets.Add(1)
	content, err := handler(datasetName)
	if err != nil {
		d.logger.Error("dataset handler failed", "name", datasetName.String(), "error", err)
		d.reply(to, datasetName, response.New(response.StatusInternalError, response.TextInternalError), false)
		return
	}

	versioned := datasetName.Append(name.Version(d.nextVersion()))
	packets, err := response.Segment(versioned, content, response.Options{
		MaxPayload:  d.options.MaxPayload,
		ContentType: packet.ContentTypeBlob,
		Freshness:   d.options.Freshness,
		Signer:      d.signer,
		Segmented:   true,
	})
	if err != nil {
		d.logger.Error("segmenting dataset failed", "name", datasetName.String(), "error", err)
		return
	}
	for _, data := range packets {
		d.cache.add(data.Name, data.Encode())
	}
	// The consumer asked for the unversioned name; it gets the first
	// segment now and fetches the rest from the cache.
	d.sendWire(to, packets[0].Name, packets[0].Encode())
}

// nextVersion returns a millisecond timestamp strictly greater than
// every version handed out before.
func (d *Dispatcher) nextVersion() uint64 {
	version := clock.UnixMilli(d.clock)
	if version <= d.lastVersion {
		version = d.lastVersion + 1
	}
	d.lastVersion = version
	return version
}

func (d *Dispatcher) sendWire(to face.Face, dataName name.Name, wire []byte) {
	if err := to.Send(wire); err != nil {
		d.logger.Warn("sending response failed", "face", to.ID(), "name", dataName.String(), "error", err)
	}
}
