package rest

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/service/analytics"
)

// dashboardData is the server-rendered view model for the dashboard page.
// Charts are fetched by the page itself from the chart endpoints.
type dashboardData struct {
	Version    string
	Regions    []analytics.RegionCount
	AllRegions string
	TotalCount int
	FraudCount int
	FraudRate  string
	MeanAmount string
	MaxAmount  string
	Algorithm  string
	ModelTrees int
	TrainedAt  string
}

// handleDashboard renders the dashboard page
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	regions, err := h.analytics.Regions(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	summary, err := h.analytics.DatasetSummary(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	model, err := h.analytics.ModelSummary(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	data := dashboardData{
		Version:    h.version,
		Regions:    regions.Regions,
		AllRegions: analytics.AllRegions,
		TotalCount: summary.TotalCount,
		FraudCount: summary.FraudCount,
		FraudRate:  fmt.Sprintf("%.1f%%", summary.FraudRate*100),
		MeanAmount: fmt.Sprintf("$%.2f", summary.MeanAmount),
		MaxAmount:  fmt.Sprintf("$%.2f", summary.MaxAmount),
		Algorithm:  model.Algorithm,
		ModelTrees: model.TreeCount,
		TrainedAt:  model.TrainedAt.Format(time.RFC3339),
	}

	// Render into a buffer first so template failures produce a clean error
	// response instead of a truncated page.
	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render dashboard", "error", err)
		writeErrorEnvelope(w, r, http.StatusInternalServerError, &ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "An internal error occurred",
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

var dashboardTemplate = template.Must(template.New("dashboard").Parse(dashboardHTML))

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Fraud Detection Dashboard</title>
<style>
  :root { color-scheme: dark; }
  * { box-sizing: border-box; }
  body {
    margin: 0;
    font-family: -apple-system, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
    background: #10151c;
    color: #e3e8ee;
  }
  header {
    padding: 1.25rem 2rem;
    border-bottom: 1px solid #232b36;
    display: flex;
    align-items: baseline;
    justify-content: space-between;
  }
  header h1 { margin: 0; font-size: 1.25rem; font-weight: 600; }
  header .version { color: #7a8694; font-size: 0.8rem; }
  main { max-width: 1080px; margin: 0 auto; padding: 1.5rem 2rem 3rem; }
  .cards {
    display: grid;
    grid-template-columns: repeat(auto-fit, minmax(160px, 1fr));
    gap: 1rem;
    margin-bottom: 1.5rem;
  }
  .card {
    background: #161d27;
    border: 1px solid #232b36;
    border-radius: 8px;
    padding: 0.9rem 1.1rem;
  }
  .card .label { color: #7a8694; font-size: 0.75rem; text-transform: uppercase; letter-spacing: 0.05em; }
  .card .value { font-size: 1.4rem; font-weight: 600; margin-top: 0.25rem; }
  .controls { margin-bottom: 1.5rem; }
  .controls label { margin-right: 0.5rem; color: #9aa6b2; }
  select {
    background: #161d27;
    color: #e3e8ee;
    border: 1px solid #2e3947;
    border-radius: 6px;
    padding: 0.45rem 0.7rem;
    font-size: 0.95rem;
  }
  section { margin-bottom: 2rem; }
  section h2 { font-size: 1rem; font-weight: 600; margin: 0 0 0.25rem; }
  section .subtitle { color: #7a8694; font-size: 0.8rem; margin: 0 0 0.75rem; }
  .panel {
    background: #161d27;
    border: 1px solid #232b36;
    border-radius: 8px;
    padding: 1.25rem;
  }
  #histogram {
    display: flex;
    align-items: flex-end;
    gap: 3px;
    height: 240px;
  }
  #histogram .bar {
    flex: 1;
    min-height: 2px;
    border-radius: 2px 2px 0 0;
  }
  .empty { color: #7a8694; font-style: italic; padding: 2rem 0; text-align: center; }
  .axis { display: flex; justify-content: space-between; color: #7a8694; font-size: 0.75rem; margin-top: 0.5rem; }
  .legend { display: flex; gap: 1.25rem; margin-top: 0.9rem; color: #9aa6b2; font-size: 0.8rem; }
  .legend .swatch {
    display: inline-block;
    width: 10px;
    height: 10px;
    border-radius: 2px;
    margin-right: 0.35rem;
  }
  .outcome-row { margin-bottom: 1rem; }
  .outcome-row .row-label { font-size: 0.85rem; color: #9aa6b2; margin-bottom: 0.35rem; }
  .stack { display: flex; height: 26px; border-radius: 4px; overflow: hidden; background: #232b36; }
  .stack .seg-pass { background: #2fbf9b; }
  .stack .seg-fail { background: #e07a3f; }
</style>
</head>
<body>
<header>
  <h1>Fraud Detection Dashboard</h1>
  <span class="version">gradient-boosted scoring demo {{if .Version}}&middot; {{.Version}}{{end}}</span>
</header>
<main>
  <div class="cards">
    <div class="card"><div class="label">Transactions</div><div class="value">{{.TotalCount}}</div></div>
    <div class="card"><div class="label">Labeled Fraud</div><div class="value">{{.FraudCount}} ({{.FraudRate}})</div></div>
    <div class="card"><div class="label">Mean Amount</div><div class="value">{{.MeanAmount}}</div></div>
    <div class="card"><div class="label">Max Amount</div><div class="value">{{.MaxAmount}}</div></div>
    <div class="card"><div class="label">Model</div><div class="value">{{.ModelTrees}} trees</div></div>
  </div>

  <div class="controls">
    <label for="region-select">Region</label>
    <select id="region-select">
      <option value="{{.AllRegions}}">All regions</option>
      {{- range .Regions}}
      <option value="{{.Region}}">{{.Region}} ({{.Count}})</option>
      {{- end}}
    </select>
  </div>

  <section>
    <h2>Transaction Amounts</h2>
    <p class="subtitle">Bar height is transaction count; color is the mean fraud probability of the bin.</p>
    <div class="panel">
      <div id="histogram"></div>
      <div class="axis"><span id="histogram-min"></span><span id="histogram-max"></span></div>
      <div class="legend">
        <span><span class="swatch" style="background: hsl(120, 70%, 45%)"></span>low probability</span>
        <span><span class="swatch" style="background: hsl(60, 70%, 45%)"></span>medium</span>
        <span><span class="swatch" style="background: hsl(0, 70%, 45%)"></span>high probability</span>
      </div>
    </div>
  </section>

  <section>
    <h2>Authentication Outcomes</h2>
    <p class="subtitle">Share of two-factor results within each OAuth outcome.</p>
    <div class="panel">
      <div id="auth-outcomes"></div>
      <div class="legend">
        <span><span class="swatch" style="background: #2fbf9b"></span>2FA passed</span>
        <span><span class="swatch" style="background: #e07a3f"></span>2FA failed</span>
      </div>
    </div>
  </section>
</main>
<script>
(function () {
  var select = document.getElementById('region-select');

  function fetchChart(path, region) {
    var url = path + '?region=' + encodeURIComponent(region);
    return fetch(url).then(function (res) {
      return res.json();
    }).then(function (body) {
      if (!body.success) {
        throw new Error(body.error ? body.error.message : 'request failed');
      }
      return body.data;
    });
  }

  function probabilityColor(p) {
    var hue = Math.round(120 * (1 - p));
    return 'hsl(' + hue + ', 70%, 45%)';
  }

  function formatAmount(v) {
    return '$' + v.toFixed(2);
  }

  function renderHistogram(chart) {
    var container = document.getElementById('histogram');
    container.innerHTML = '';
    document.getElementById('histogram-min').textContent = '';
    document.getElementById('histogram-max').textContent = '';

    if (chart.total_count === 0) {
      container.innerHTML = '<div class="empty">No transactions in this region</div>';
      return;
    }

    var maxCount = 0;
    chart.bins.forEach(function (bin) {
      if (bin.count > maxCount) { maxCount = bin.count; }
    });

    chart.bins.forEach(function (bin) {
      var bar = document.createElement('div');
      bar.className = 'bar';
      var height = maxCount > 0 ? (bin.count / maxCount) * 100 : 0;
      bar.style.height = Math.max(height, bin.count > 0 ? 2 : 0.5) + '%';
      bar.style.background = bin.count > 0 ? probabilityColor(bin.mean_probability) : '#232b36';
      bar.title = formatAmount(bin.min) + ' to ' + formatAmount(bin.max) +
        '\n' + bin.count + ' transactions' +
        '\nmean fraud probability ' + bin.mean_probability.toFixed(3);
      container.appendChild(bar);
    });

    var first = chart.bins[0];
    var last = chart.bins[chart.bins.length - 1];
    document.getElementById('histogram-min').textContent = formatAmount(first.min);
    document.getElementById('histogram-max').textContent = formatAmount(last.max);
  }

  function renderAuthOutcomes(chart) {
    var container = document.getElementById('auth-outcomes');
    container.innerHTML = '';

    if (chart.total_count === 0) {
      container.innerHTML = '<div class="empty">No transactions in this region</div>';
      return;
    }

    chart.groups.forEach(function (group) {
      var row = document.createElement('div');
      row.className = 'outcome-row';

      var label = document.createElement('div');
      label.className = 'row-label';
      label.textContent = (group.oauth_valid ? 'OAuth valid' : 'OAuth invalid') +
        ' (' + group.count + ' transactions)';
      row.appendChild(label);

      var stack = document.createElement('div');
      stack.className = 'stack';
      if (group.count > 0) {
        var pass = document.createElement('div');
        pass.className = 'seg-pass';
        pass.style.width = (group.two_fa_passed_share * 100) + '%';
        pass.title = group.two_fa_passed_count + ' passed 2FA';
        stack.appendChild(pass);

        var fail = document.createElement('div');
        fail.className = 'seg-fail';
        fail.style.width = (group.two_fa_failed_share * 100) + '%';
        fail.title = group.two_fa_failed_count + ' failed 2FA';
        stack.appendChild(fail);
      }
      row.appendChild(stack);
      container.appendChild(row);
    });
  }

  function refresh() {
    var region = select.value;
    fetchChart('/api/v1/charts/amount-histogram', region).then(renderHistogram).catch(function (err) {
      document.getElementById('histogram').innerHTML =
        '<div class="empty">' + err.message + '</div>';
    });
    fetchChart('/api/v1/charts/auth-outcomes', region).then(renderAuthOutcomes).catch(function (err) {
      document.getElementById('auth-outcomes').innerHTML =
        '<div class="empty">' + err.message + '</div>';
    });
  }

  select.addEventListener('change', refresh);
  refresh();
})();
</script>
</body>
</html>
`
