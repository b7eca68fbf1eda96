package stream

import (
	"strconv"
	"strings"
)

// pathFrame mirrors one container frame of the scope stack: an array
// counter or an object's last-read name.
type pathFrame struct {
	isArray bool
	index   int
	name    string
	hasName bool
}

// pathStack is kept one frame shallower than the scope stack: the document
// root has no path frame, per spec's "depth of the path stack equals depth
// of the scope stack minus one" invariant.
type pathStack struct {
	frames []pathFrame
	// lastArrayConsume records whether the most recent advancing
	// operation incremented the counter of what is now the top array
	// frame, so PreviousPath can roll it back by one.
	lastArrayConsume bool
}

func newPathStack() *pathStack {
	return &pathStack{}
}

func (p *pathStack) pushArray() {
	p.frames = append(p.frames, pathFrame{isArray: true})
	p.lastArrayConsume = false
}

func (p *pathStack) pushObject() {
	p.frames = append(p.frames, pathFrame{isArray: false})
	p.lastArrayConsume = false
}

func (p *pathStack) pop() {
	p.frames = p.frames[:len(p.frames)-1]
	p.lastArrayConsume = false
}

func (p *pathStack) setName(name string) {
	top := &p.frames[len(p.frames)-1]
	top.name = name
	top.hasName = true
	p.lastArrayConsume = false
}

// consumeValue records that one value finished inside the current top
// frame (if it is an array) and advances its counter. Objects don't
// change on value consumption: the name already recorded the position.
func (p *pathStack) consumeValue() {
	if len(p.frames) == 0 {
		return
	}
	top := &p.frames[len(p.frames)-1]
	if top.isArray {
		top.index++
		p.lastArrayConsume = true
		return
	}
	p.lastArrayConsume = false
}

func (p *pathStack) render() string {
	var b strings.Builder
	b.WriteByte('$')
	for _, f := range p.frames {
		if f.isArray {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(f.index))
			b.WriteByte(']')
			continue
		}
		b.WriteByte('.')
		if f.hasName {
			b.WriteString(f.name)
		}
	}
	return b.String()
}

func (p *pathStack) renderPrevious() string {
	if !p.lastArrayConsume || len(p.frames) == 0 {
		return p.render()
	}
	saved := p.frames[len(p.frames)-1].index
	p.frames[len(p.frames)-1].index--
	s := p.render()
	p.frames[len(p.frames)-1].index = saved
	return s
}
