// Package arthax is the client-side controller of the Artha-X personal finance
// assistant. It holds no financial logic: every analysis is delegated to the
// Artha-X backend over HTTP. What it does own is the orchestration around those
// exchanges:
//   - Identity: a single, persisted user identifier (a phone number) that gates
//     access to every feature.
//   - Notifications: transient success and error messages that remove
//     themselves after a fixed display window.
//   - Gateway: JSON exchanges with the backend, each classified as a success, an
//     application error or a transport error.
//   - Presenters: the five analysis features (finances, category, goal, loan,
//     investment), each binding a trigger to one exchange and one rendering.
//   - Conversation: the append-only chat log with the backend agent.
//
// The package does not draw anything itself. Rendering goes through the Surface,
// Region and ToastSink interfaces, implemented for the terminal by the renderer
// package and by simple recorders in tests.
package arthax
