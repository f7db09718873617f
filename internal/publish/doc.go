// Package publish uploads a released version to package registries.
//
// Two publishers exist:
//   - Cargo: refreshes Cargo.lock, then runs `cargo package` and
//     `cargo publish` against crates.io
//   - Docker: retags a locally built container image with the release
//     version and pushes it through the Docker Engine API
//
// Publishers run after the release commit and tag have been pushed, so a
// failure here never leaves the repository in a half-written state. The
// Docker client talks to the daemon with API version negotiation enabled
// and detects the daemon socket on Linux, macOS and Windows.
package publish
