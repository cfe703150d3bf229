package server

import (
	"bytes"
	"fmt"
)

// liveReloadScript is injected into every served HTML page. It opens the
// reload WebSocket on load and reloads the window on any received
// message; on disconnect it waits briefly and reconnects, so a page left
// open across a dev-server restart recovers on its own.
const liveReloadScript = `<script>
(function() {
  var url = "ws://" + location.host + "/live-reload";
  function connect() {
    var ws = new WebSocket(url);
    ws.onmessage = function() {
      location.reload();
    };
    ws.onclose = function() {
      setTimeout(connect, 1000);
    };
  }
  connect();
})();
</script>`

// InjectLiveReload inserts the live-reload script before </body>, or
// appends it when the document has no such tag.
func InjectLiveReload(html []byte) []byte {
	idx := bytes.LastIndex(html, []byte("</body>"))
	if idx == -1 {
		return fmt.Appendf(html, "%s", liveReloadScript)
	}
	result := make([]byte, 0, len(html)+len(liveReloadScript))
	result = append(result, html[:idx]...)
	result = append(result, liveReloadScript...)
	result = append(result, html[idx:]...)
	return result
}
