package app

import (
	"errors"
	"math"
	"testing"

	"github.com/richinsley/goquads/scene"
)

// fakeContext replays a scripted clock and closes after closeAfter polls.
type fakeContext struct {
	times      []float64
	polls      int
	swaps      int
	closeAfter int // 0 never closes
	calls      []string
}

func (c *fakeContext) MakeCurrent() {}
func (c *fakeContext) Shutdown()    {}
func (c *fakeContext) PollEvents() {
	c.polls++
	c.calls = append(c.calls, "poll")
}
func (c *fakeContext) ShouldClose() bool {
	return c.closeAfter > 0 && c.polls >= c.closeAfter
}
func (c *fakeContext) SwapBuffers() {
	c.swaps++
	c.calls = append(c.calls, "swap")
}
func (c *fakeContext) GetFramebufferSize() (int, int) { return 640, 480 }
func (c *fakeContext) Time() float64 {
	c.calls = append(c.calls, "time")
	if len(c.times) == 0 {
		return 0
	}
	t := c.times[0]
	if len(c.times) > 1 {
		c.times = c.times[1:]
	}
	return t
}

type fakeRenderer struct {
	ctx      *fakeContext
	draws    int
	slimeX   []float32
	readErrs map[int]error
}

func (r *fakeRenderer) RenderFrame(s *scene.Scene) {
	r.draws++
	r.slimeX = append(r.slimeX, shapeNamed(s, "slime").Position.X())
	if r.ctx != nil {
		r.ctx.calls = append(r.ctx.calls, "render")
	}
}

func (r *fakeRenderer) ReadFrame() ([]byte, error) {
	if err, ok := r.readErrs[r.draws-1]; ok {
		return nil, err
	}
	return []byte{byte(r.draws), 0, 0, 255}, nil
}

type fakeSink struct {
	frames   [][]byte
	failAt   int // -1 never
	closed   bool
	closeErr error
}

func (s *fakeSink) WriteFrame(p []byte) error {
	if s.failAt >= 0 && len(s.frames) == s.failAt {
		return errors.New("pipe broken")
	}
	s.frames = append(s.frames, p)
	return nil
}

func (s *fakeSink) Close() error {
	s.closed = true
	return s.closeErr
}

func shapeNamed(s *scene.Scene, name string) *scene.Shape {
	for _, shape := range s.Shapes {
		if shape.Name == name {
			return shape
		}
	}
	return nil
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) <= 1e-4
}

func TestStepOrder(t *testing.T) {
	ctx := &fakeContext{times: []float64{0.1}}
	r := &fakeRenderer{ctx: ctx}
	a := New(ctx, r, scene.Default())

	a.Step()

	want := []string{"poll", "time", "render", "swap"}
	if len(ctx.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", ctx.calls, want)
	}
	for i := range want {
		if ctx.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, ctx.calls[i], want[i])
		}
	}
}

func TestUpdateUsesElapsedTime(t *testing.T) {
	ctx := &fakeContext{times: []float64{1.0, 1.5, 1.5}}
	a := New(ctx, &fakeRenderer{}, scene.Default())

	a.Update()
	if got := shapeNamed(a.scene, "slime").Position.X(); !near(got, -5.0) {
		t.Errorf("after first update slime x = %v, want -5.0", got)
	}
	if got := shapeNamed(a.scene, "box").Position.X(); !near(got, -3.9) {
		t.Errorf("after first update box x = %v, want -3.9", got)
	}
	if got := shapeNamed(a.scene, "triangle").Angle; !near(got, 45) {
		t.Errorf("after first update angle = %v, want 45", got)
	}

	a.Update()
	if got := shapeNamed(a.scene, "slime").Position.X(); !near(got, -4.5) {
		t.Errorf("after second update slime x = %v, want -4.5", got)
	}

	// Same timestamp again: dt = 0, nothing moves.
	a.Update()
	if got := shapeNamed(a.scene, "slime").Position.X(); !near(got, -4.5) {
		t.Errorf("after zero-dt update slime x = %v, want -4.5", got)
	}
}

func TestQuitFinishesCurrentIteration(t *testing.T) {
	ctx := &fakeContext{times: []float64{0.1, 0.2, 0.3, 0.4}, closeAfter: 3}
	r := &fakeRenderer{ctx: ctx}
	a := New(ctx, r, scene.Default())

	a.Run()

	if a.Running() {
		t.Error("app still running after quit")
	}
	// Quit is seen in the third ProcessInput; that iteration still draws.
	if r.draws != 3 {
		t.Errorf("draws = %d, want 3", r.draws)
	}
	if ctx.swaps != 3 {
		t.Errorf("swaps = %d, want 3", ctx.swaps)
	}
	if ctx.polls != 3 {
		t.Errorf("polls = %d, want 3", ctx.polls)
	}
	if a.Frames() != 3 {
		t.Errorf("Frames() = %d, want 3", a.Frames())
	}
	if last := ctx.calls[len(ctx.calls)-1]; last != "swap" {
		t.Errorf("last call = %q, want swap", last)
	}
}

func TestRunMeasuresFirstFrameFromLoopStart(t *testing.T) {
	// Setup took 1.4s before Run; the first frame lands 10ms later.
	ctx := &fakeContext{times: []float64{1.4, 1.41}, closeAfter: 1}
	a := New(ctx, &fakeRenderer{}, scene.Default())

	a.Run()

	if got := shapeNamed(a.scene, "slime").Position.X(); !near(got, -5.99) {
		t.Errorf("slime x after first frame = %v, want -5.99", got)
	}
	if got := shapeNamed(a.scene, "triangle").Angle; !near(got, 0.45) {
		t.Errorf("angle after first frame = %v, want 0.45", got)
	}
}

func TestQuitOnFirstPoll(t *testing.T) {
	ctx := &fakeContext{closeAfter: 1}
	r := &fakeRenderer{}
	a := New(ctx, r, scene.Default())

	a.Run()

	if r.draws != 1 {
		t.Errorf("draws = %d, want 1", r.draws)
	}
}

func TestRecord(t *testing.T) {
	ctx := &fakeContext{}
	r := &fakeRenderer{}
	sink := &fakeSink{failAt: -1}
	a := New(ctx, r, scene.Default())

	if err := a.Record(r, sink, 30, 60); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(sink.frames) != 30 {
		t.Errorf("frames = %d, want 30", len(sink.frames))
	}
	for i, f := range sink.frames {
		if int(f[0]) != i+1 {
			t.Errorf("frame %d out of order (tag %d)", i, f[0])
			break
		}
	}
	if !sink.closed {
		t.Error("sink not closed")
	}
	// Frame 0 shows the start state; each frame advances 1/60 s.
	if !near(r.slimeX[0], -6.0) {
		t.Errorf("first frame slime x = %v, want -6.0", r.slimeX[0])
	}
	if !near(r.slimeX[1], -6.0+1.0/60) {
		t.Errorf("second frame slime x = %v", r.slimeX[1])
	}
	if got := shapeNamed(a.scene, "slime").Position.X(); !near(got, -5.5) {
		t.Errorf("slime x after 30 frames = %v, want -5.5", got)
	}
	if got := shapeNamed(a.scene, "triangle").Angle; !near(got, 22.5) {
		t.Errorf("angle after 30 frames = %v, want 22.5", got)
	}
	if ctx.swaps != 0 {
		t.Errorf("record mode presented %d frames to the window", ctx.swaps)
	}
}

func TestRecordInterrupted(t *testing.T) {
	ctx := &fakeContext{closeAfter: 5}
	r := &fakeRenderer{}
	sink := &fakeSink{failAt: -1}
	a := New(ctx, r, scene.Default())

	err := a.Record(r, sink, 100, 30)
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("err = %v, want ErrInterrupted", err)
	}
	if len(sink.frames) != 4 {
		t.Errorf("frames = %d, want 4", len(sink.frames))
	}
	if !sink.closed {
		t.Error("sink not closed")
	}
}

func TestRecordReadError(t *testing.T) {
	ctx := &fakeContext{}
	boom := errors.New("readback failed")
	r := &fakeRenderer{readErrs: map[int]error{2: boom}}
	sink := &fakeSink{failAt: -1}
	a := New(ctx, r, scene.Default())

	err := a.Record(r, sink, 10, 30)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped readback error", err)
	}
	if len(sink.frames) != 2 {
		t.Errorf("frames = %d, want 2", len(sink.frames))
	}
}

func TestRecordSinkError(t *testing.T) {
	ctx := &fakeContext{}
	r := &fakeRenderer{}
	sink := &fakeSink{failAt: 3}
	a := New(ctx, r, scene.Default())

	err := a.Record(r, sink, 50, 30)
	if err == nil {
		t.Fatal("expected sink error")
	}
	if len(sink.frames) != 3 {
		t.Errorf("frames written = %d, want 3", len(sink.frames))
	}
	if !sink.closed {
		t.Error("sink not closed")
	}
}

func TestRecordCloseError(t *testing.T) {
	ctx := &fakeContext{}
	r := &fakeRenderer{}
	closeErr := errors.New("ffmpeg exit status 1")
	sink := &fakeSink{failAt: -1, closeErr: closeErr}
	a := New(ctx, r, scene.Default())

	if err := a.Record(r, sink, 3, 30); !errors.Is(err, closeErr) {
		t.Errorf("err = %v, want close error", err)
	}
}

func TestRecordInvalidFPS(t *testing.T) {
	sink := &fakeSink{failAt: -1}
	a := New(&fakeContext{}, &fakeRenderer{}, scene.Default())
	if err := a.Record(&fakeRenderer{}, sink, 10, 0); err == nil {
		t.Error("expected error for fps 0")
	}
	if !sink.closed {
		t.Error("sink not closed")
	}
}
