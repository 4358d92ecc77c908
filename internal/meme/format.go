package meme

import "github.com/keepmind9/heliumbot/internal/card"

// TemplateCard renders a blank template with its image
func TemplateCard(t Template, color int) *card.Card {
	return &card.Card{
		Title:  t.Name,
		Color:  color,
		Image:  t.URL,
		Footer: "imgflip template " + t.ID,
	}
}

// MemeCard renders a meme post with its image
func MemeCard(m Meme, color int) *card.Card {
	c := &card.Card{
		Title: m.Title,
		URL:   m.PostLink,
		Color: color,
		Image: m.URL,
	}
	switch {
	case m.Subreddit != "" && m.Author != "":
		c.Footer = "r/" + m.Subreddit + " by u/" + m.Author
	case m.Subreddit != "":
		c.Footer = "r/" + m.Subreddit
	}
	return c
}
