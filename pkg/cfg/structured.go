package cfg

import "strings"

// StructuredLinker links blocks by following brace nesting. A branch header
// gets a true edge into its body and a false edge to the else arm or the
// join point. Loop bodies get back edges to their header. Break and continue
// resolve to the enclosing loop or switch. Bodies without braces cover
// exactly one following block, and a body written on the header line stays
// inside the header block.
type StructuredLinker struct {
	classifier StatementClassifier
}

// NewStructuredLinker creates a StructuredLinker. A nil classifier selects
// TokenClassifier.
func NewStructuredLinker(c StatementClassifier) *StructuredLinker {
	if c == nil {
		c = TokenClassifier{}
	}
	return &StructuredLinker{classifier: c}
}

type frameKind int

const (
	frameBlock frameKind = iota
	frameIf
	frameElse
	frameLoop
	frameDo
	frameSwitch
)

// flow is an edge waiting for its target block.
type flow struct {
	from int
	typ  EdgeType
}

type frame struct {
	kind       frameKind
	header     int
	braceless  bool
	bodySeen   bool
	exits      []flow // flows that skip to the join after the construct
	breaks     []flow
	continues  []int // do-while continue sources, resolved at the tail
	hasDefault bool
}

type linkState struct {
	g          *CFG
	classifier StatementClassifier
	stack      []*frame
	live       []flow
	pendingIf  *frame // if frame closed by the previous block, an else may follow
	pendingDo  *frame // do frame closed by the previous block, its while tail follows
}

// Link implements Linker.
func (l *StructuredLinker) Link(g *CFG) {
	s := &linkState{g: g, classifier: l.classifier}
	for _, b := range g.Blocks {
		if len(b.Statements) == 0 {
			continue
		}
		s.visit(b)
	}
}

func (s *linkState) visit(b *BasicBlock) {
	last := b.LastStatement()
	t := s.classifier.Traits(last)
	closes, opens := braceBalance(last)
	control := t.Has(TraitControl)

	if top := s.top(); top != nil && top.braceless && top.header != b.ID {
		top.bodySeen = true
	}
	// "} else {" closes the then-arm before the else header is entered.
	if control {
		s.closeN(closes)
	}

	tookElse := false
	if control && t.Has(TraitElse) && s.pendingIf != nil {
		s.live = s.takeFalseEdge(b.ID, s.pendingIf.header)
		tookElse = true
	} else {
		s.connect(b.ID)
	}
	doTail := s.pendingDo
	s.pendingIf, s.pendingDo = nil, nil

	switch {
	case doTail != nil && control && t.Has(TraitWhile):
		s.finishDo(b.ID, doTail)
	case control && t.Has(TraitIf):
		var inherited []flow
		if tookElse {
			inherited, s.live = s.live, nil
		}
		s.openIf(b.ID, last, opens, inherited)
	case tookElse:
		exits := s.live
		s.live = nil
		s.openElse(b.ID, last, opens, exits)
	case control && t.Has(TraitWhile|TraitFor):
		s.openLoop(b.ID, last, opens)
	case control && t.Has(TraitDo):
		s.openDo(b.ID, opens)
	case control && t.Has(TraitSwitch):
		s.openSwitch(b.ID, opens)
	default:
		isDefault := isDefaultLabel(b.Statements[0])
		if isDefault || s.classifier.Traits(b.Statements[0]).Has(TraitCase) {
			s.caseLabel(b.ID, isDefault)
		}
		s.flowFrom(b.ID, t)
		if !control {
			s.closeN(closes)
		}
		s.openPlain(opens)
	}

	s.closeBraceless()
}

func (s *linkState) top() *frame {
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}

func (s *linkState) push(f *frame) {
	s.stack = append(s.stack, f)
}

func (s *linkState) pop() *frame {
	f := s.top()
	if f != nil {
		s.stack = s.stack[:len(s.stack)-1]
	}
	return f
}

// connect resolves every live flow to target.
func (s *linkState) connect(target int) {
	for _, f := range s.live {
		s.g.AddEdge(f.from, target, f.typ)
	}
	s.live = nil
}

// takeFalseEdge routes the pending if header's false flow to target and
// returns the remaining live flows.
func (s *linkState) takeFalseEdge(target, header int) []flow {
	rest := make([]flow, 0, len(s.live))
	for _, f := range s.live {
		if f.from == header && f.typ == EdgeTypeFalse {
			s.g.AddEdge(f.from, target, f.typ)
			continue
		}
		rest = append(rest, f)
	}
	return rest
}

// flowFrom sets the live flows leaving block id given its terminating traits.
func (s *linkState) flowFrom(id int, t Trait) {
	switch {
	case t.Has(TraitReturn):
		s.live = nil
	case t.Has(TraitBreak):
		if f := s.innermost(frameLoop, frameDo, frameSwitch); f != nil {
			f.breaks = append(f.breaks, flow{from: id, typ: EdgeTypeBreak})
		}
		s.live = nil
	case t.Has(TraitContinue):
		s.continueFrom(id)
		s.live = nil
	default:
		s.live = []flow{{from: id, typ: EdgeTypeUnconditional}}
	}
}

func (s *linkState) continueFrom(id int) {
	f := s.innermost(frameLoop, frameDo)
	if f == nil {
		return
	}
	if f.kind == frameDo {
		f.continues = append(f.continues, id)
		return
	}
	s.g.AddEdge(id, f.header, EdgeTypeContinue)
}

func (s *linkState) innermost(kinds ...frameKind) *frame {
	for i := len(s.stack) - 1; i >= 0; i-- {
		for _, k := range kinds {
			if s.stack[i].kind == k {
				return s.stack[i]
			}
		}
	}
	return nil
}

func (s *linkState) openIf(id int, header string, opens int, inherited []flow) {
	f := &frame{kind: frameIf, header: id, exits: inherited}
	if opens > 0 {
		s.push(f)
		s.live = []flow{{from: id, typ: EdgeTypeTrue}}
		s.openPlain(opens - 1)
		return
	}
	if body := bodyAfterCondition(header); body != "" {
		// The then-arm runs inside the header block.
		s.inlineArm(id, body)
		s.closeIf(f)
		return
	}
	f.braceless = true
	s.push(f)
	s.live = []flow{{from: id, typ: EdgeTypeTrue}}
}

func (s *linkState) openElse(id int, header string, opens int, exits []flow) {
	f := &frame{kind: frameElse, header: id, exits: exits}
	if opens > 0 {
		s.push(f)
		s.live = []flow{{from: id, typ: EdgeTypeUnconditional}}
		s.openPlain(opens - 1)
		return
	}
	if body := bodyAfterKeyword(header, "else"); body != "" {
		s.flowFrom(id, s.classifier.Traits(body))
		s.live = append(s.live, exits...)
		return
	}
	f.braceless = true
	s.push(f)
	s.live = []flow{{from: id, typ: EdgeTypeUnconditional}}
}

func (s *linkState) openLoop(id int, header string, opens int) {
	f := &frame{kind: frameLoop, header: id}
	if opens > 0 {
		s.push(f)
		s.live = []flow{{from: id, typ: EdgeTypeTrue}}
		s.openPlain(opens - 1)
		return
	}
	if body := bodyAfterCondition(header); body != "" {
		// Single-statement body on the header line loops on the header itself.
		s.push(f)
		bt := s.classifier.Traits(body)
		s.flowFrom(id, bt)
		if !bt.Has(TraitReturn | TraitBreak | TraitContinue) {
			s.live = []flow{{from: id, typ: EdgeTypeTrue}}
		}
		s.closeFrame(s.pop())
		return
	}
	f.braceless = true
	s.push(f)
	s.live = []flow{{from: id, typ: EdgeTypeTrue}}
}

func (s *linkState) openDo(id int, opens int) {
	f := &frame{kind: frameDo, header: id}
	f.braceless = opens == 0
	s.push(f)
	s.live = []flow{{from: id, typ: EdgeTypeUnconditional}}
	if opens > 0 {
		s.openPlain(opens - 1)
	}
}

func (s *linkState) openSwitch(id int, opens int) {
	f := &frame{kind: frameSwitch, header: id, braceless: opens == 0}
	s.push(f)
	s.live = nil
	if opens > 0 {
		s.openPlain(opens - 1)
	}
}

func (s *linkState) openPlain(n int) {
	for i := 0; i < n; i++ {
		s.push(&frame{kind: frameBlock, header: -1})
	}
}

// inlineArm records the flows out of a then-arm written on the header line.
func (s *linkState) inlineArm(id int, body string) {
	bt := s.classifier.Traits(body)
	s.flowFrom(id, bt)
	if !bt.Has(TraitReturn | TraitBreak | TraitContinue) {
		s.live = []flow{{from: id, typ: EdgeTypeTrue}}
	}
}

func (s *linkState) caseLabel(id int, isDefault bool) {
	sw := s.innermost(frameSwitch)
	if sw == nil {
		return
	}
	if isDefault {
		sw.hasDefault = true
	}
	s.g.AddEdge(sw.header, id, EdgeTypeUnconditional)
}

func (s *linkState) finishDo(tail int, f *frame) {
	s.g.AddEdge(tail, f.header, EdgeTypeBackEdge)
	for _, c := range f.continues {
		s.g.AddEdge(c, tail, EdgeTypeContinue)
	}
	s.live = append([]flow{{from: tail, typ: EdgeTypeFalse}}, f.breaks...)
}

// closeN closes n braced frames, first closing any braceless frames above them.
func (s *linkState) closeN(n int) {
	for i := 0; i < n; i++ {
		for top := s.top(); top != nil && top.braceless; top = s.top() {
			s.closeFrame(s.pop())
		}
		if f := s.pop(); f != nil {
			s.closeFrame(f)
		}
	}
}

// closeBraceless closes braceless frames whose single body block is done.
func (s *linkState) closeBraceless() {
	for top := s.top(); top != nil && top.braceless && top.bodySeen; top = s.top() {
		s.closeFrame(s.pop())
	}
}

func (s *linkState) closeFrame(f *frame) {
	switch f.kind {
	case frameIf:
		s.closeIf(f)
	case frameElse:
		s.live = append(s.live, f.exits...)
	case frameLoop:
		for _, fl := range s.live {
			s.g.AddEdge(fl.from, f.header, EdgeTypeBackEdge)
		}
		s.live = append([]flow{{from: f.header, typ: EdgeTypeFalse}}, f.breaks...)
	case frameDo:
		s.pendingDo = f
	case frameSwitch:
		s.live = append(s.live, f.breaks...)
		if !f.hasDefault {
			s.live = append(s.live, flow{from: f.header, typ: EdgeTypeFalse})
		}
	}
}

func (s *linkState) closeIf(f *frame) {
	live := make([]flow, 0, len(s.live)+len(f.exits)+1)
	live = append(live, s.live...)
	live = append(live, f.exits...)
	live = append(live, flow{from: f.header, typ: EdgeTypeFalse})
	s.live = live
	s.pendingIf = f
}

// braceBalance counts braces outside string and character literals.
// Unmatched '}' come first in a statement, so the result is the number of
// frames closed followed by the number opened.
func braceBalance(stmt string) (closes, opens int) {
	depth := 0
	var quote byte
	for i := 0; i < len(stmt); i++ {
		c := stmt[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			} else {
				closes++
			}
		}
	}
	return closes, depth
}

// bodyAfterCondition returns the text following the parenthesized condition
// of an if, while or for header, without a leading '{'.
func bodyAfterCondition(header string) string {
	open := strings.IndexByte(header, '(')
	if open < 0 {
		return ""
	}
	depth := 0
	for i := open; i < len(header); i++ {
		switch header[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return strings.TrimSpace(header[i+1:])
			}
		}
	}
	return ""
}

// bodyAfterKeyword returns the text following keyword in header.
func bodyAfterKeyword(header, keyword string) string {
	lower := strings.ToLower(header)
	idx := strings.Index(lower, keyword)
	if idx < 0 {
		return ""
	}
	rest := strings.TrimSpace(header[idx+len(keyword):])
	if strings.HasPrefix(strings.ToLower(rest), "if") {
		return ""
	}
	return rest
}

func isDefaultLabel(stmt string) bool {
	lower := strings.ToLower(strings.TrimLeft(stmt, "} \t"))
	if !strings.HasPrefix(lower, "default") {
		return false
	}
	rest := strings.TrimSpace(lower[len("default"):])
	return strings.HasPrefix(rest, ":")
}
