package session

import (
	"fmt"
	"strconv"

	"nationportal/config"
	"nationportal/models"
)

// CreatePost publishes a post at the head of the forum. Admins post as the
// presidential office, citizens under their username.
func (s *Session) CreatePost(title, content, category string) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var author string
	switch s.identity.Role() {
	case models.RoleAdmin:
		author = config.AdminAuthorLabel
	case models.RoleCitizen:
		c, _ := s.identity.Citizen()
		author = c.Username
	default:
		return models.Post{}, models.ErrUnauthorized
	}
	cat, err := models.ParseCategory(category)
	if err != nil {
		return models.Post{}, err
	}

	var post models.Post
	err = s.mutate(func(doc *models.NationDocument) error {
		now := s.now()
		post = models.Post{
			ID:        nextPostID(doc.Posts, now.UnixNano()),
			Author:    author,
			Title:     title,
			Content:   content,
			Timestamp: models.NewMillis(now),
			Category:  cat,
			Reports:   []models.Report{},
		}
		doc.Posts = append([]models.Post{post}, doc.Posts...)
		return nil
	})
	if err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// DeletePost removes a post. Deleting an id that is not present does nothing.
func (s *Session) DeletePost(postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireAdmin(); err != nil {
		return err
	}
	return s.mutate(func(doc *models.NationDocument) error {
		for i := range doc.Posts {
			if doc.Posts[i].ID == postID {
				doc.Posts = append(doc.Posts[:i], doc.Posts[i+1:]...)
				return nil
			}
		}
		return errNoChange
	})
}

// ReportPost attaches a citizen's report to a post.
func (s *Session) ReportPost(postID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	me, ok := s.identity.Citizen()
	if !ok {
		return models.ErrUnauthorized
	}
	return s.mutate(func(doc *models.NationDocument) error {
		for i := range doc.Posts {
			if doc.Posts[i].ID != postID {
				continue
			}
			doc.Posts[i].Reports = append(doc.Posts[i].Reports, models.Report{
				Reporter:  me.Username,
				Reason:    reason,
				Timestamp: models.NewMillis(s.now()),
			})
			return nil
		}
		return fmt.Errorf("%w: %s", models.ErrPostNotFound, postID)
	})
}

// FilterPosts lists posts in stored order. An empty category lists every post.
func (s *Session) FilterPosts(category string) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}

	posts := s.doc.Clone().Posts
	if category == "" {
		return posts, nil
	}
	cat, err := models.ParseCategory(category)
	if err != nil {
		return nil, err
	}
	filtered := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if p.Category == cat {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// nextPostID formats seed as a decimal id, bumping it until no post uses it.
func nextPostID(posts []models.Post, seed int64) string {
	taken := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		taken[p.ID] = struct{}{}
	}
	for {
		id := strconv.FormatInt(seed, 10)
		if _, ok := taken[id]; !ok {
			return id
		}
		seed++
	}
}
