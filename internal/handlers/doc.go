// Package handlers provides HTTP request handlers for the audio relay API.
//
// It includes handlers for:
//   - Streaming the audio of a YouTube video as mp3
//   - Resolving a title and artist to a YouTube video ID
//   - Searching the Spotify track catalog
//   - Health checks and version information
package handlers
