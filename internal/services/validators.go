package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// MusicBrainz, Discogs, and TMDB have no maintained Go client, so these
// three validators are built directly on net/http instead of an SDK —
// the one ambient concern in this module built without a third-party
// library. Everything else they do
// (context-scoped requests, JSON decoding, wrapped errors) follows the
// same idiom as HTTPVisionProvider.

// MusicBrainzClient implements ArtistAuthority and ReleaseAuthority
// against the public MusicBrainz API.
type MusicBrainzClient struct {
	baseURL string
	client  *http.Client
}

// NewMusicBrainzClient builds a client; baseURL defaults to the public
// MusicBrainz API root when empty.
func NewMusicBrainzClient(baseURL string, timeout time.Duration) *MusicBrainzClient {
	if baseURL == "" {
		baseURL = "https://musicbrainz.org/ws/2"
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &MusicBrainzClient{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

type mbArtistSearchResponse struct {
	Artists []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artists"`
}

func (c *MusicBrainzClient) SearchArtist(ctx context.Context, name string) ([]NameMatch, error) {
	q := url.Values{"query": {name}, "fmt": {"json"}}
	var parsed mbArtistSearchResponse
	if err := c.get(ctx, "/artist", q, &parsed); err != nil {
		return nil, err
	}
	matches := make([]NameMatch, 0, len(parsed.Artists))
	for _, a := range parsed.Artists {
		matches = append(matches, NameMatch{ID: a.ID, Name: a.Name})
	}
	return matches, nil
}

type mbReleaseSearchResponse struct {
	Releases []struct {
		ID      string `json:"id"`
		Title   string `json:"title"`
		Date    string `json:"date"`
		Country string `json:"country"`
		LabelInfo []struct {
			Label struct {
				Name string `json:"name"`
			} `json:"label"`
		} `json:"label-info"`
	} `json:"releases"`
}

func (c *MusicBrainzClient) SearchRelease(ctx context.Context, title, artist string) ([]ReleaseCandidate, error) {
	query := fmt.Sprintf("release:%s", title)
	if artist != "" {
		query += fmt.Sprintf(" AND artist:%s", artist)
	}
	q := url.Values{"query": {query}, "fmt": {"json"}}

	var parsed mbReleaseSearchResponse
	if err := c.get(ctx, "/release", q, &parsed); err != nil {
		return nil, err
	}

	candidates := make([]ReleaseCandidate, 0, len(parsed.Releases))
	for _, r := range parsed.Releases {
		labels := make([]string, 0, len(r.LabelInfo))
		for _, li := range r.LabelInfo {
			if li.Label.Name != "" {
				labels = append(labels, li.Label.Name)
			}
		}
		candidates = append(candidates, ReleaseCandidate{
			ID:        r.ID,
			Title:     r.Title,
			Date:      r.Date,
			Country:   r.Country,
			LabelInfo: labels,
		})
	}
	return candidates, nil
}

// HealthCheck probes the MusicBrainz artist endpoint with a one-letter,
// one-result query, enough to confirm the service is reachable without counting against any
// meaningful rate-limit budget.
func (c *MusicBrainzClient) HealthCheck(ctx context.Context) bool {
	return c.get(ctx, "/artist", url.Values{"query": {"a"}, "fmt": {"json"}, "limit": {"1"}}, &mbArtistSearchResponse{}) == nil
}

func (c *MusicBrainzClient) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("musicbrainz: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("musicbrainz: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("musicbrainz: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("musicbrainz: decoding response: %w", err)
	}
	return nil
}

// TMDBClient implements FilmAuthority against the TMDB API.
type TMDBClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewTMDBClient builds a client keyed by apiKey; baseURL defaults to the
// public TMDB API root when empty.
func NewTMDBClient(baseURL, apiKey string, timeout time.Duration) *TMDBClient {
	if baseURL == "" {
		baseURL = "https://api.themoviedb.org/3"
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &TMDBClient{baseURL: baseURL, apiKey: apiKey, client: &http.Client{Timeout: timeout}}
}

type tmdbSearchResponse struct {
	Results []struct {
		ID          int     `json:"id"`
		Title       string  `json:"title"`
		ReleaseDate string  `json:"release_date"`
		VoteAverage float64 `json:"vote_average"`
	} `json:"results"`
}

func (c *TMDBClient) SearchMovie(ctx context.Context, title string, year int) ([]MovieCandidate, error) {
	q := url.Values{"query": {title}}
	if year > 0 {
		q.Set("year", strconv.Itoa(year))
	}

	var parsed tmdbSearchResponse
	if err := c.get(ctx, "/search/movie", q, &parsed); err != nil {
		return nil, err
	}

	candidates := make([]MovieCandidate, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		candidates = append(candidates, MovieCandidate{
			ID:          strconv.Itoa(r.ID),
			Title:       r.Title,
			ReleaseDate: r.ReleaseDate,
			VoteAverage: r.VoteAverage,
		})
	}
	return candidates, nil
}

func (c *TMDBClient) GetMovie(ctx context.Context, id string) (MovieCandidate, error) {
	var parsed struct {
		ID          int     `json:"id"`
		Title       string  `json:"title"`
		ReleaseDate string  `json:"release_date"`
		VoteAverage float64 `json:"vote_average"`
	}
	if err := c.get(ctx, "/movie/"+id, url.Values{}, &parsed); err != nil {
		return MovieCandidate{}, err
	}
	return MovieCandidate{
		ID:          strconv.Itoa(parsed.ID),
		Title:       parsed.Title,
		ReleaseDate: parsed.ReleaseDate,
		VoteAverage: parsed.VoteAverage,
	}, nil
}

type tmdbCreditsResponse struct {
	Cast []struct {
		ID        int    `json:"id"`
		Name      string `json:"name"`
		Character string `json:"character"`
	} `json:"cast"`
	Crew []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
		Job  string `json:"job"`
	} `json:"crew"`
}

func (c *TMDBClient) GetMovieCredits(ctx context.Context, id string) (MovieCredits, error) {
	var parsed tmdbCreditsResponse
	if err := c.get(ctx, "/movie/"+id+"/credits", url.Values{}, &parsed); err != nil {
		return MovieCredits{}, err
	}

	credits := MovieCredits{
		Cast: make([]CreditedPerson, 0, len(parsed.Cast)),
		Crew: make([]CreditedPerson, 0, len(parsed.Crew)),
	}
	for _, c := range parsed.Cast {
		credits.Cast = append(credits.Cast, CreditedPerson{ID: strconv.Itoa(c.ID), Name: c.Name, Role: c.Character})
	}
	for _, c := range parsed.Crew {
		credits.Crew = append(credits.Crew, CreditedPerson{ID: strconv.Itoa(c.ID), Name: c.Name, Role: c.Job})
	}
	return credits, nil
}

// HealthCheck confirms the configured API key is accepted by fetching
// TMDB's genre list, the cheapest authenticated endpoint available.
func (c *TMDBClient) HealthCheck(ctx context.Context) bool {
	return c.get(ctx, "/genre/movie/list", url.Values{}, &struct{}{}) == nil
}

func (c *TMDBClient) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	query.Set("api_key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("tmdb: building request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tmdb: decoding response: %w", err)
	}
	return nil
}

// DiscogsClient implements SecondaryMusicAuthority as the Enrichment
// fallback catalog, consulted only when MusicBrainz fills at most one
// field.
type DiscogsClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewDiscogsClient builds a client keyed by a personal access token;
// baseURL defaults to the public Discogs API root when empty.
func NewDiscogsClient(baseURL, token string, timeout time.Duration) *DiscogsClient {
	if baseURL == "" {
		baseURL = "https://api.discogs.com"
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &DiscogsClient{baseURL: baseURL, token: token, client: &http.Client{Timeout: timeout}}
}

type discogsSearchResponse struct {
	Results []struct {
		ID    int      `json:"id"`
		Title string   `json:"title"`
		Year  string   `json:"year"`
		Label []string `json:"label"`
		Genre []string `json:"genre"`
		Style []string `json:"style"`
	} `json:"results"`
}

// HealthCheck confirms Discogs is reachable by issuing a minimal search.
func (c *DiscogsClient) HealthCheck(ctx context.Context) bool {
	_, err := c.SearchRelease(ctx, "a")
	return err == nil
}

func (c *DiscogsClient) SearchRelease(ctx context.Context, query string) ([]SecondaryReleaseCandidate, error) {
	q := url.Values{"q": {query}, "type": {"release"}}
	if c.token != "" {
		q.Set("token", c.token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/database/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("discogs: building request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discogs: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discogs: unexpected status %d", resp.StatusCode)
	}

	var parsed discogsSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("discogs: decoding response: %w", err)
	}

	candidates := make([]SecondaryReleaseCandidate, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		year, _ := strconv.Atoi(r.Year)
		candidates = append(candidates, SecondaryReleaseCandidate{
			ID:    strconv.Itoa(r.ID),
			Title: r.Title,
			Year:  year,
			Label: r.Label,
			Genre: r.Genre,
			Style: r.Style,
		})
	}
	return candidates, nil
}
