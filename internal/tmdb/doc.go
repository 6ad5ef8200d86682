// Package tmdb fetches show and episode metadata plus artwork from The Movie
// Database for tagging muxed episodes.
package tmdb
