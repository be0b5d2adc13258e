/*
Package log provides structured logging for llrbkv using zerolog.

It wraps zerolog with a global logger, component-scoped child loggers
(WithComponent), and level-keyed helper functions. The block store, tree,
and facade each log under their own component name so a JSON log stream can
be filtered per layer.

Levels:

  - Debug: per-block writes and lock transitions, useful when investigating
    file growth or lock contention.
  - Info: commits (root address published) and each facade Connect.
  - Warn: a Stats call whose file-size or tree-depth read fails. Errors
    returned to callers are not logged by the engine.
*/
package log
