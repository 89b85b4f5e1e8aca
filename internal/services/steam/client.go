package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	appListURL       = "https://api.steampowered.com/ISteamApps/GetAppList/v2/"
	appDetailsURL    = "https://store.steampowered.com/api/appdetails"
	appNewsURL       = "https://api.steampowered.com/ISteamNews/GetNewsForApp/v2/"
	workshopQueryURL = "https://api.steampowered.com/IPublishedFileService/QueryFiles/v1/"
	fileDetailsURL   = "https://api.steampowered.com/ISteamRemoteStorage/GetPublishedFileDetails/v1/"

	assetsBaseURL = "https://shared.akamai.steamstatic.com/store_item_assets/steam/apps"

	newsCount = 100
)

// APIError is the single domain error for upstream fetch failures: a
// non-success status or a response missing the expected JSON shape.
type APIError struct {
	Op      string
	Appid   uint
	Message string
}

func (e *APIError) Error() string {
	if e.Appid != 0 {
		return fmt.Sprintf("steam %s (appid %d): %s", e.Op, e.Appid, e.Message)
	}
	return fmt.Sprintf("steam %s: %s", e.Op, e.Message)
}

// Client talks to the public Steam Web API endpoints.
type Client struct {
	apiKey string
	http   *resty.Client
}

func NewClient(apiKey string) *Client {
	client := resty.New()
	client.SetTimeout(30 * time.Second)

	return &Client{
		apiKey: apiKey,
		http:   client,
	}
}

// GetAppList fetches the full application catalog in one call.
func (c *Client) GetAppList(ctx context.Context) ([]AppListEntry, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("format", "json").
		Get(appListURL)
	if err != nil {
		return nil, &APIError{Op: "GetAppList", Message: err.Error()}
	}
	if !resp.IsSuccess() {
		return nil, &APIError{Op: "GetAppList", Message: fmt.Sprintf("response status: %d", resp.StatusCode())}
	}

	var body struct {
		Applist *struct {
			Apps []AppListEntry `json:"apps"`
		} `json:"applist"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, &APIError{Op: "GetAppList", Message: "invalid response format: " + err.Error()}
	}
	if body.Applist == nil || body.Applist.Apps == nil {
		return nil, &APIError{Op: "GetAppList", Message: "invalid response format"}
	}

	return body.Applist.Apps, nil
}

// GetAppDetails fetches the store details payload for one app. A success=false
// flag or missing data object is a fetch failure, not an empty result.
func (c *Client) GetAppDetails(ctx context.Context, appid uint) (*AppDetailsPayload, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"appids": strconv.FormatUint(uint64(appid), 10),
			"cc":     "us",
			"l":      "en",
		}).
		Get(appDetailsURL)
	if err != nil {
		return nil, &APIError{Op: "GetAppDetails", Appid: appid, Message: err.Error()}
	}
	if !resp.IsSuccess() {
		return nil, &APIError{Op: "GetAppDetails", Appid: appid, Message: fmt.Sprintf("response status: %d", resp.StatusCode())}
	}

	var body map[string]struct {
		Success bool               `json:"success"`
		Data    *AppDetailsPayload `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, &APIError{Op: "GetAppDetails", Appid: appid, Message: "invalid response format: " + err.Error()}
	}

	entry, ok := body[strconv.FormatUint(uint64(appid), 10)]
	if !ok || !entry.Success || entry.Data == nil {
		return nil, &APIError{Op: "GetAppDetails", Appid: appid, Message: "response body: " + string(resp.Body())}
	}

	return entry.Data, nil
}

// GetAppNews fetches the latest news items for one app.
func (c *Client) GetAppNews(ctx context.Context, appid uint) ([]NewsItemPayload, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"appid":     strconv.FormatUint(uint64(appid), 10),
			"count":     strconv.Itoa(newsCount),
			"maxlength": "0",
			"format":    "json",
		}).
		Get(appNewsURL)
	if err != nil {
		return nil, &APIError{Op: "GetAppNews", Appid: appid, Message: err.Error()}
	}
	if !resp.IsSuccess() {
		return nil, &APIError{Op: "GetAppNews", Appid: appid, Message: fmt.Sprintf("response status: %d", resp.StatusCode())}
	}

	var body struct {
		Appnews *struct {
			NewsItems []NewsItemPayload `json:"newsitems"`
		} `json:"appnews"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, &APIError{Op: "GetAppNews", Appid: appid, Message: "invalid response format: " + err.Error()}
	}
	if body.Appnews == nil || body.Appnews.NewsItems == nil {
		return nil, &APIError{Op: "GetAppNews", Appid: appid, Message: "response body: " + string(resp.Body())}
	}

	return body.Appnews.NewsItems, nil
}

// QueryWorkshopItems fetches one page of the workshop listing for an app.
// Pagination is cursor based; the first page uses cursor "*".
func (c *Client) QueryWorkshopItems(ctx context.Context, appid uint, cursor string) (*WorkshopListingPage, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":                   c.apiKey,
			"appid":                 strconv.FormatUint(uint64(appid), 10),
			"cursor":                cursor,
			"numperpage":            "100",
			"return_details":        "true",
			"query_type":            "1", // ranked by publication date
			"return_metadata":       "true",
			"return_previews":       "true",
			"return_vote_data":      "false",
			"return_short_description": "true",
		}).
		Get(workshopQueryURL)
	if err != nil {
		return nil, &APIError{Op: "QueryWorkshopItems", Appid: appid, Message: err.Error()}
	}
	if !resp.IsSuccess() {
		return nil, &APIError{Op: "QueryWorkshopItems", Appid: appid, Message: fmt.Sprintf("response status: %d", resp.StatusCode())}
	}

	var body struct {
		Response *struct {
			Total                 int                   `json:"total"`
			NextCursor            string                `json:"next_cursor"`
			PublishedFileDetails  []WorkshopListingItem `json:"publishedfiledetails"`
		} `json:"response"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, &APIError{Op: "QueryWorkshopItems", Appid: appid, Message: "invalid response format: " + err.Error()}
	}
	if body.Response == nil {
		return nil, &APIError{Op: "QueryWorkshopItems", Appid: appid, Message: "response body: " + string(resp.Body())}
	}

	return &WorkshopListingPage{
		Items:      body.Response.PublishedFileDetails,
		NextCursor: body.Response.NextCursor,
		Total:      body.Response.Total,
	}, nil
}

// GetPublishedFileDetails fetches full details for a batch of workshop items.
func (c *Client) GetPublishedFileDetails(ctx context.Context, ids []string) ([]WorkshopDetailItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	form := map[string]string{
		"itemcount": strconv.Itoa(len(ids)),
	}
	for i, id := range ids {
		form[fmt.Sprintf("publishedfileids[%d]", i)] = id
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		Post(fileDetailsURL)
	if err != nil {
		return nil, &APIError{Op: "GetPublishedFileDetails", Message: err.Error()}
	}
	if !resp.IsSuccess() {
		return nil, &APIError{Op: "GetPublishedFileDetails", Message: fmt.Sprintf("response status: %d", resp.StatusCode())}
	}

	var body struct {
		Response *struct {
			PublishedFileDetails []WorkshopDetailItem `json:"publishedfiledetails"`
		} `json:"response"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, &APIError{Op: "GetPublishedFileDetails", Message: "invalid response format: " + err.Error()}
	}
	if body.Response == nil {
		return nil, &APIError{Op: "GetPublishedFileDetails", Message: "response body: " + string(resp.Body())}
	}

	return body.Response.PublishedFileDetails, nil
}

// LibraryImageURL is the conventional 600x900 library capsule location.
func LibraryImageURL(appid uint) string {
	return fmt.Sprintf("%s/%d/library_600x900.jpg", assetsBaseURL, appid)
}

// LibraryHeroImageURL is the conventional library hero banner location.
func LibraryHeroImageURL(appid uint) string {
	return fmt.Sprintf("%s/%d/library_hero.jpg", assetsBaseURL, appid)
}

// ProbeImage checks whether a static asset exists. It tries HEAD first and
// falls back to GET, since the CDN rejects HEAD for some assets. Network
// errors count as "does not exist".
func (c *Client) ProbeImage(ctx context.Context, url string) bool {
	resp, err := c.http.R().SetContext(ctx).Head(url)
	if err == nil && resp.StatusCode() == http.StatusOK {
		return true
	}

	resp, err = c.http.R().SetContext(ctx).Get(url)
	return err == nil && resp.StatusCode() == http.StatusOK
}
