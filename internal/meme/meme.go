// Package meme serves blank meme templates from imgflip and random memes
// from meme-api.
package meme

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/keepmind9/heliumbot/internal/card"
	"github.com/keepmind9/heliumbot/internal/command"
	"github.com/keepmind9/heliumbot/pkg/constants"
)

// ErrUnsuccessful is returned when imgflip reports success=false
var ErrUnsuccessful = errors.New("imgflip: request unsuccessful")

// Template is a blank imgflip template
type Template struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	BoxCount int    `json:"box_count"`
}

type templatesResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Memes []Template `json:"memes"`
	} `json:"data"`
}

// Meme is one meme-api post
type Meme struct {
	PostLink  string `json:"postLink"`
	Subreddit string `json:"subreddit"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	NSFW      bool   `json:"nsfw,omitempty"`
	Spoiler   bool   `json:"spoiler,omitempty"`
	Author    string `json:"author,omitempty"`
	Ups       int    `json:"ups,omitempty"`
}

type memesResponse struct {
	Count int    `json:"count"`
	Memes []Meme `json:"memes"`
}

// Getter is the HTTP collaborator the service needs
type Getter interface {
	GetJSON(ctx context.Context, endpoint, url string, out any) error
}

// Service fetches memes and picks random templates and colors
type Service struct {
	http         Getter
	templatesURL string
	randomURL    string

	mu  sync.Mutex
	rng *rand.Rand
}

// NewService creates the meme handlers. Empty URLs select the public
// APIs; a nil rng is seeded randomly.
func NewService(http Getter, templatesURL, randomURL string, rng *rand.Rand) *Service {
	if templatesURL == "" {
		templatesURL = constants.DefaultImgflipURL
	}
	if randomURL == "" {
		randomURL = constants.DefaultMemeAPIURL
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Service{http: http, templatesURL: templatesURL, randomURL: randomURL, rng: rng}
}

func (s *Service) intN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// color picks a random 24-bit card color
func (s *Service) color() int {
	return s.intN(constants.MaxCardColor + 1)
}

// Templates fetches every imgflip template
func (s *Service) Templates(ctx context.Context) ([]Template, error) {
	var resp templatesResponse
	if err := s.http.GetJSON(ctx, "imgflip_templates", s.templatesURL, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, ErrUnsuccessful
	}
	return resp.Data.Memes, nil
}

// Random fetches one random meme
func (s *Service) Random(ctx context.Context) ([]Meme, error) {
	var resp memesResponse
	if err := s.http.GetJSON(ctx, "meme_random", s.randomURL, &resp); err != nil {
		return nil, err
	}
	return resp.Memes, nil
}

// Group returns the meme command group
func (s *Service) Group() command.Group {
	return command.Group{
		Name:    "meme",
		Aliases: []string{"business"},
		Help:    "Commands to get a blank or random funny meme",
		Commands: []command.Command{
			{Name: "blank", Aliases: []string{"canvas", "create"}, Help: "A random blank meme template", Handler: s.blank},
			{Name: "random", Aliases: []string{"r"}, Help: "A random meme", Handler: s.random},
		},
	}
}

func (s *Service) blank(ctx context.Context, inv *command.Invocation) error {
	templates, err := s.Templates(ctx)
	if err != nil {
		return err
	}
	if len(templates) == 0 {
		return inv.Reply.SendCard(card.NotFound("Meme template", "imgflip"))
	}
	t := templates[s.intN(len(templates))]
	return inv.Reply.SendCard(TemplateCard(t, s.color()))
}

func (s *Service) random(ctx context.Context, inv *command.Invocation) error {
	memes, err := s.Random(ctx)
	if err != nil {
		return err
	}
	if len(memes) == 0 {
		return inv.Reply.SendCard(card.NotFound("Meme", "meme-api"))
	}
	return inv.Reply.SendCard(MemeCard(memes[0], s.color()))
}
