package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Dashboard renders the single-page dashboard. The page is static; every
// data region is filled by the /sse/dashboard stream, re-requested whenever
// the rating slider moves.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, dashboardPage)
		return err
	})
}

const dashboardPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Supermarket Sales Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<script src="https://cdn.jsdelivr.net/npm/chart.js@4.4.3/dist/chart.umd.min.js"></script>
<style>
:root { --bg: #f5f6fa; --card: #ffffff; --accent: #2563eb; --text: #1f2937; }
body { margin: 0; font-family: system-ui, sans-serif; background: var(--bg); color: var(--text); }
header { padding: 1.5rem 2rem; background: var(--card); border-bottom: 1px solid #e5e7eb; }
header h1 { margin: 0; font-size: 1.4rem; }
header p { margin: 0.25rem 0 0; color: #6b7280; font-size: 0.9rem; }
main { padding: 1.5rem 2rem; display: grid; gap: 1.5rem; }
section { background: var(--card); border-radius: 8px; padding: 1.25rem; box-shadow: 0 1px 3px rgba(0,0,0,0.08); }
section h2 { margin: 0 0 1rem; font-size: 1.05rem; }
.slider-row { display: flex; align-items: center; gap: 1rem; }
.slider-row input[type=range] { flex: 1; accent-color: var(--accent); }
.slider-value { font-weight: 600; min-width: 2ch; text-align: center; }
.kpi-grid { display: grid; grid-template-columns: repeat(3, 1fr); gap: 1rem; }
.kpi-card { display: flex; flex-direction: column; gap: 0.25rem; padding: 1rem; border: 1px solid #e5e7eb; border-radius: 8px; }
.kpi-label { color: #6b7280; font-size: 0.8rem; text-transform: uppercase; letter-spacing: 0.05em; }
.kpi-value { font-size: 1.5rem; font-weight: 700; }
.modern-table { width: 100%; border-collapse: collapse; font-size: 0.875rem; }
.modern-table th, .modern-table td { padding: 0.5rem 0.75rem; text-align: left; border-bottom: 1px solid #e5e7eb; }
.modern-table thead th { background: #f9fafb; position: sticky; top: 0; }
.category-badge { background: #eef2ff; color: #4338ca; padding: 0.1rem 0.5rem; border-radius: 999px; font-size: 0.75rem; }
.table-note { color: #6b7280; font-size: 0.8rem; margin: 0 0 0.75rem; }
.table-scroll { max-height: 420px; overflow-y: auto; }
.chart-wrap { position: relative; height: 340px; }
.loading { color: #9ca3af; }
</style>
</head>
<body data-signals="{minRating: 5, dailyData: []}" data-on-load="@get('/sse/dashboard')">
<header>
<h1>Supermarket Sales Dashboard</h1>
<p>Filter 1,000 retail transactions by customer rating</p>
</header>
<main>
<section>
<h2>Minimum rating</h2>
<div class="slider-row">
<span>0</span>
<input type="range" min="0" max="10" step="1" data-bind="minRating" data-on-input="@get('/sse/dashboard')">
<span>10</span>
<span class="slider-value" data-text="$minRating"></span>
</div>
</section>
<section>
<h2>Summary</h2>
<div id="summary-content"><p class="loading">Loading summary…</p></div>
</section>
<section>
<h2>Sales Over Time</h2>
<div class="chart-wrap"><canvas id="sales-chart" data-effect="updateSalesChart($dailyData)"></canvas></div>
</section>
<section>
<h2>Filtered Transactions</h2>
<div class="table-scroll">
<div id="sales-content"><p class="loading">Loading transactions…</p></div>
</div>
</section>
</main>
<script>
let salesChart = null;
window.updateSalesChart = function (series) {
	const data = Array.isArray(series) ? series : [];
	const labels = data.map(p => p.date);
	const values = data.map(p => p.total);
	const canvas = document.getElementById('sales-chart');
	if (!canvas || typeof Chart === 'undefined') return;
	if (salesChart === null) {
		salesChart = new Chart(canvas, {
			type: 'line',
			data: { labels: labels, datasets: [{ label: 'Total Sales', data: values, borderColor: '#2563eb', backgroundColor: 'rgba(37,99,235,0.1)', fill: true, tension: 0.1 }] },
			options: {
				responsive: true,
				maintainAspectRatio: false,
				scales: {
					x: { title: { display: true, text: 'Date' }, ticks: { maxRotation: 45, minRotation: 45 } },
					y: { title: { display: true, text: 'Total Sales' } }
				}
			}
		});
		return;
	}
	salesChart.data.labels = labels;
	salesChart.data.datasets[0].data = values;
	salesChart.update();
};
</script>
</body>
</html>
`
