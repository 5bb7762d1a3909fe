// Package feed rebuilds podcast RSS documents from the artifacts on disk.
// The feed is derived state: every rebuild scans the subscription directory
// and emits one item per audio file it can match to a known video, so the
// document always reflects what a podcast client can actually download.
package feed

import (
	"encoding/xml"
	"fmt"
	"time"
)

const rssVersion = "2.0"

const itunesNamespace = "http://www.itunes.com/dtds/podcast-1.0.dtd"

type rssXML struct {
	XMLName  xml.Name   `xml:"rss"`
	Version  string     `xml:"version,attr"`
	ItunesNS string     `xml:"xmlns:itunes,attr"`
	Channel  channelXML `xml:"channel"`
}

type channelXML struct {
	Title          string      `xml:"title"`
	Link           string      `xml:"link"`
	Description    string      `xml:"description"`
	Language       string      `xml:"language"`
	LastBuildDate  string      `xml:"lastBuildDate"`
	ItunesAuthor   string      `xml:"itunes:author"`
	ItunesSummary  string      `xml:"itunes:summary"`
	ItunesExplicit string      `xml:"itunes:explicit"`
	ItunesType     string      `xml:"itunes:type"`
	ItunesCategory categoryXML `xml:"itunes:category"`
	ItunesImage    *imageXML   `xml:"itunes:image,omitempty"`
	Items          []itemXML   `xml:"item"`
}

type categoryXML struct {
	Text string `xml:"text,attr"`
}

type imageXML struct {
	Href string `xml:"href,attr"`
}

type itemXML struct {
	Title          string       `xml:"title"`
	Description    string       `xml:"description"`
	GUID           guidXML      `xml:"guid"`
	PubDate        string       `xml:"pubDate"`
	Enclosure      enclosureXML `xml:"enclosure"`
	ItunesAuthor   string       `xml:"itunes:author,omitempty"`
	ItunesSummary  string       `xml:"itunes:summary,omitempty"`
	ItunesDuration string       `xml:"itunes:duration,omitempty"`
	ItunesCategory *categoryXML `xml:"itunes:category,omitempty"`
	ItunesImage    *imageXML    `xml:"itunes:image,omitempty"`
}

type guidXML struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type enclosureXML struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

// formatDuration renders seconds as H:MM:SS, or M:SS under an hour.
func formatDuration(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func formatPubDate(t time.Time) string {
	return t.UTC().Format(time.RFC1123Z)
}
