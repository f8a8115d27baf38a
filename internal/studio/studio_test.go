package studio

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fpang/menu-lens/internal/dish"
	"github.com/fpang/menu-lens/internal/imagedata"
	"github.com/fpang/menu-lens/internal/intake"
	"github.com/fpang/menu-lens/internal/metrics"
	"github.com/fpang/menu-lens/internal/style"
)

func TestMain(m *testing.M) {
	metrics.Disable()
	m.Run()
}

type fakeExtractor struct {
	entries []intake.Entry
	err     error
}

func (f *fakeExtractor) Extract(context.Context, string) ([]intake.Entry, error) {
	return f.entries, f.err
}

type fakeImages struct {
	mu       sync.Mutex
	genErr   error
	editErr  error
	gate     chan struct{}
	prompts  []string
	editsFor []string
}

func (f *fakeImages) Generate(_ context.Context, prompt string) (imagedata.Image, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	err, gate := f.genErr, f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return imagedata.Image{}, err
	}
	name := strings.TrimPrefix(strings.SplitN(prompt, ".", 2)[0], "Professional food photography of ")
	return imagedata.Image{MIMEType: imagedata.PNGMIMEType, Data: []byte("photo:" + name)}, nil
}

func (f *fakeImages) Edit(_ context.Context, img imagedata.Image, instruction string) (imagedata.Image, error) {
	f.mu.Lock()
	f.editsFor = append(f.editsFor, string(img.Data))
	err := f.editErr
	f.mu.Unlock()
	if err != nil {
		return imagedata.Image{}, err
	}
	return imagedata.Image{MIMEType: imagedata.PNGMIMEType, Data: []byte(string(img.Data) + "+" + instruction)}, nil
}

func twoDishMenu() *fakeExtractor {
	return &fakeExtractor{entries: []intake.Entry{
		{Name: "Tomato Soup", Description: "Roasted tomatoes"},
		{Name: "Lemon Tart", Description: "Shortcrust, lemon curd"},
	}}
}

func newStudio(images *fakeImages) *Studio {
	return New(twoDishMenu(), images, Config{DefaultStyle: style.BrightModern})
}

func TestAnalyzeThenGenerateOneDish(t *testing.T) {
	s := newStudio(&fakeImages{})
	dishes, err := s.AnalyzeMenu(context.Background(), "Tomato Soup\nLemon Tart")
	if err != nil {
		t.Fatalf("AnalyzeMenu() error = %v", err)
	}
	if len(dishes) != 2 {
		t.Fatalf("got %d dishes", len(dishes))
	}
	for _, d := range dishes {
		if d.Status != dish.StatusIdle || d.HasImage() {
			t.Errorf("new dish %+v should be idle without image", d)
		}
	}

	if err := s.Generate(context.Background(), dishes[0].ID); err != nil {
		t.Fatal(err)
	}
	got := s.Dishes()
	if got[0].Status != dish.StatusReady || string(got[0].Image.Data) != "photo:Tomato Soup" {
		t.Errorf("dish 1 = %+v", got[0])
	}
	if got[1].Status != dish.StatusIdle || got[1].HasImage() {
		t.Errorf("dish 2 touched: %+v", got[1])
	}
}

func TestAnalyzeFailureKeepsCurrentMenu(t *testing.T) {
	ext := twoDishMenu()
	s := New(ext, &fakeImages{}, Config{})
	if _, err := s.AnalyzeMenu(context.Background(), "menu"); err != nil {
		t.Fatal(err)
	}
	ext.err = errors.New("boom")
	if _, err := s.AnalyzeMenu(context.Background(), "menu"); !errors.Is(err, intake.ErrAnalysisFailed) {
		t.Errorf("AnalyzeMenu() error = %v", err)
	}
	if len(s.Dishes()) != 2 {
		t.Error("failed analysis must not clear the menu")
	}
}

func TestGenerateUnknownDish(t *testing.T) {
	s := newStudio(&fakeImages{})
	if err := s.Generate(context.Background(), "nope"); !errors.Is(err, ErrDishNotFound) {
		t.Errorf("Generate() error = %v", err)
	}
	if err := s.GenerateAsync(context.Background(), "nope"); !errors.Is(err, ErrDishNotFound) {
		t.Errorf("GenerateAsync() error = %v", err)
	}
}

func TestSetStyleRefusedWhileGenerating(t *testing.T) {
	images := &fakeImages{gate: make(chan struct{})}
	s := newStudio(images)
	dishes, _ := s.AnalyzeMenu(context.Background(), "menu")

	if err := s.GenerateAsync(context.Background(), dishes[0].ID); err != nil {
		t.Fatal(err)
	}
	for i := 0; !s.Generating(); i++ {
		if i > 1000 {
			t.Fatal("dish never entered generating state")
		}
		time.Sleep(time.Millisecond)
	}
	if err := s.SetStyle(style.RusticDark, ""); !errors.Is(err, ErrGenerating) {
		t.Errorf("SetStyle() error = %v, want ErrGenerating", err)
	}
	close(images.gate)
	s.Wait()

	if err := s.SetStyle(style.RusticDark, "on slate"); err != nil {
		t.Fatalf("SetStyle() error = %v", err)
	}
	if c := s.Style(); c.Style != style.RusticDark || c.Custom != "on slate" {
		t.Errorf("Style() = %+v", c)
	}
}

func TestGenerateAll(t *testing.T) {
	s := newStudio(&fakeImages{})
	if _, err := s.AnalyzeMenu(context.Background(), "menu"); err != nil {
		t.Fatal(err)
	}
	for _, d := range s.GenerateAll(context.Background()) {
		if d.Status != dish.StatusReady || !d.HasImage() {
			t.Errorf("dish %s = %s", d.Name, d.Status)
		}
	}
}

func TestOpenEditRequiresImage(t *testing.T) {
	s := newStudio(&fakeImages{})
	dishes, _ := s.AnalyzeMenu(context.Background(), "menu")
	if _, _, err := s.OpenEdit(dishes[0].ID); !errors.Is(err, ErrNoImage) {
		t.Errorf("OpenEdit() error = %v, want ErrNoImage", err)
	}
	if _, _, err := s.OpenEdit("missing"); !errors.Is(err, ErrDishNotFound) {
		t.Errorf("OpenEdit() error = %v, want ErrDishNotFound", err)
	}
}

func TestEditCommitsToDish(t *testing.T) {
	s := newStudio(&fakeImages{})
	dishes, _ := s.AnalyzeMenu(context.Background(), "menu")
	id := dishes[1].ID
	if err := s.Generate(context.Background(), id); err != nil {
		t.Fatal(err)
	}

	sid, session, err := s.OpenEdit(id)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(sid, "edit-") {
		t.Errorf("session id = %q", sid)
	}
	if _, err := session.ApplyEdit(context.Background(), "add mint"); err != nil {
		t.Fatal(err)
	}
	d, _ := s.Dish(id)
	if string(d.Image.Data) != "photo:Lemon Tart+add mint" {
		t.Errorf("dish image = %q", d.Image.Data)
	}

	found, dishID, ok := s.Session(strings.TrimPrefix(sid, "edit-"))
	if !ok || found != session || dishID != id {
		t.Error("Session() lookup by bare id failed")
	}
	final, err := s.CloseEdit(sid)
	if err != nil || string(final.Data) != "photo:Lemon Tart+add mint" {
		t.Errorf("CloseEdit() = %q, %v", final.Data, err)
	}
	if _, err := s.CloseEdit(sid); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second CloseEdit() error = %v", err)
	}
}

func TestNewMenuClosesSessionsAndDropsCommits(t *testing.T) {
	s := newStudio(&fakeImages{})
	dishes, _ := s.AnalyzeMenu(context.Background(), "menu")
	_ = s.Generate(context.Background(), dishes[0].ID)
	_, session, err := s.OpenEdit(dishes[0].ID)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.AnalyzeMenu(context.Background(), "menu again"); err != nil {
		t.Fatal(err)
	}
	if s.OpenSessions() != 0 || !session.Closed() {
		t.Error("sessions should be closed by a new analysis")
	}
	for _, d := range s.Dishes() {
		if d.HasImage() {
			t.Errorf("new menu dish %s has an image", d.Name)
		}
	}
}

func TestOpenEditRacingNewMenuLeavesNoOrphans(t *testing.T) {
	for round := 0; round < 20; round++ {
		s := newStudio(&fakeImages{})
		dishes, _ := s.AnalyzeMenu(context.Background(), "menu")
		_ = s.Generate(context.Background(), dishes[0].ID)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.OpenEdit(dishes[0].ID)
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AnalyzeMenu(context.Background(), "menu again")
		}()
		wg.Wait()

		current := make(map[string]bool)
		for _, d := range s.Dishes() {
			current[d.ID] = true
		}
		s.mu.Lock()
		for id, e := range s.sessions {
			if !current[e.dishID] {
				t.Errorf("round %d: session %s is bound to a dish of the replaced menu", round, id)
			}
			if e.session.Closed() {
				t.Errorf("round %d: closed session %s still registered", round, id)
			}
		}
		s.mu.Unlock()
	}
}

func TestSetImage(t *testing.T) {
	images := &fakeImages{genErr: errors.New("network error")}
	s := newStudio(images)
	dishes, _ := s.AnalyzeMenu(context.Background(), "menu")
	id := dishes[0].ID
	_ = s.Generate(context.Background(), id)
	if d, _ := s.Dish(id); d.Status != dish.StatusFailed {
		t.Fatalf("setup: status = %s", d.Status)
	}

	upload := imagedata.Image{MIMEType: "image/jpeg", Data: []byte("uploaded")}
	d, err := s.SetImage(id, upload)
	if err != nil {
		t.Fatalf("SetImage() error = %v", err)
	}
	if d.Status != dish.StatusReady || d.Failure != nil || string(d.Image.Data) != "uploaded" {
		t.Errorf("dish after upload = %+v", d)
	}

	if _, sess, err := s.OpenEdit(id); err != nil || sess == nil {
		t.Errorf("uploaded image should be editable: %v", err)
	}
	if _, err := s.SetImage("missing", upload); !errors.Is(err, ErrDishNotFound) {
		t.Errorf("unknown dish error = %v", err)
	}
	if _, err := s.SetImage(id, imagedata.Image{}); !errors.Is(err, imagedata.ErrEmptyImage) {
		t.Errorf("empty image error = %v", err)
	}
}

func TestSetImageRefusedWhileGenerating(t *testing.T) {
	images := &fakeImages{gate: make(chan struct{})}
	s := newStudio(images)
	dishes, _ := s.AnalyzeMenu(context.Background(), "menu")
	id := dishes[0].ID
	_ = s.GenerateAsync(context.Background(), id)
	deadline := time.Now().Add(time.Second)
	for !s.Generating() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	_, err := s.SetImage(id, imagedata.Image{MIMEType: imagedata.PNGMIMEType, Data: []byte("x")})
	close(images.gate)
	s.Wait()
	if !errors.Is(err, ErrDishGenerating) {
		t.Errorf("SetImage() error = %v, want ErrDishGenerating", err)
	}
	if d, _ := s.Dish(id); string(d.Image.Data) != "photo:Tomato Soup" {
		t.Errorf("image = %q", d.Image.Data)
	}
}
