// Package types provides the data structures shared by the media packages.
//
// Core Types:
//   - TargetID: Identity of the texture a session draws into
//   - Process: Handle to a running renderer
//   - Surface: Renderer frame buffer shared with the host
//   - Texture, TextureResolver: Host side render targets
//
// Events and Input:
//   - Event: Facts reported by a renderer (navigation, status, cookies)
//   - InputEvent: Mouse, scroll, key and text input forwarded to a renderer
//
// Notifications:
//   - Notification, Notifier: User-visible alerts such as NoPlugin
package types
