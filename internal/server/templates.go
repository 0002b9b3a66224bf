package server

import "html/template"

type commentView struct {
	User      string
	Text      template.HTML
	Timestamp string
	ID        string
	Spam      bool
	Duplicate bool
}

type dashboardData struct {
	TotalComments  int
	SpamComments   int
	SpamPercentage string
	SpamUsers      int
	Comments       []commentView
}

type selectOption struct {
	Value int
	Label string
}

type setupData struct {
	Days    []selectOption
	Hours   []selectOption
	Minutes []selectOption
}

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Admin Dashboard - Comment Management</title>
    <style>
        body { font-family: 'Roboto', sans-serif; margin: 0; padding: 20px; background: #f5f6fa; }
        .dashboard-container { max-width: 1200px; margin: 0 auto; }
        .header { background: #ffffff; padding: 20px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); margin-bottom: 20px; }
        .stats-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 20px; margin-bottom: 20px; }
        .stat-card { background: #ffffff; padding: 20px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .stat-card h3 { margin: 0 0 10px 0; color: #666; font-size: 16px; }
        .stat-card .value { font-size: 24px; font-weight: bold; color: #2c3e50; }
        .comment { background: #ffffff; border: 1px solid #eee; border-radius: 8px; padding: 16px; margin-bottom: 16px; }
        .spam-comment { background: #fff5f5; border-color: #ffcccc; }
        .comment-header { display: flex; justify-content: space-between; align-items: center; margin-bottom: 8px; }
        .comment-user { font-weight: 500; color: #2c3e50; }
        .comment-status { padding: 4px 8px; border-radius: 12px; font-size: 12px; background: #e0f7fa; color: #00695c; }
        .spam-comment .comment-status { background: #ffebee; color: #c62828; }
        .comment-text { color: #555; margin-bottom: 8px; }
        .comment-timestamp { color: #888; font-size: 0.9em; margin-bottom: 4px; }
        .comment-id { color: #999; font-size: 0.8em; font-style: italic; }
    </style>
</head>
<body>
    <div class="dashboard-container">
        <div class="header">
            <h1>Comment Management Dashboard</h1>
        </div>

        <div class="stats-grid">
            <div class="stat-card">
                <h3>Total Comments</h3>
                <div class="value">{{.TotalComments}}</div>
            </div>
            <div class="stat-card">
                <h3>Spam Comments</h3>
                <div class="value">{{.SpamComments}}</div>
            </div>
            <div class="stat-card">
                <h3>Spam Percentage</h3>
                <div class="value">{{.SpamPercentage}}%</div>
            </div>
            <div class="stat-card">
                <h3>Spam Users</h3>
                <div class="value">{{.SpamUsers}}</div>
            </div>
        </div>

        <div id="comments-container">
        {{range .Comments}}
            <div class="comment{{if .Spam}} spam-comment{{end}}">
                <div class="comment-header">
                    <div class="comment-user">{{.User}}</div>
                    <div class="comment-status">{{if .Spam}}SPAM{{else}}Approved{{end}}</div>
                </div>
                <div class="comment-text">{{.Text}}</div>
                <div class="comment-timestamp">{{.Timestamp}}</div>
                <div class="comment-id">ID: {{.ID}}</div>
            </div>
        {{end}}
        </div>
    </div>
</body>
</html>
`))

var setupTemplate = template.Must(template.New("setup").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Setup - Comment Management</title>
    <style>
        body { font-family: 'Roboto', sans-serif; background: #f5f6fa; margin: 0; padding: 0; min-height: 100vh; }
        .setup-container { max-width: 600px; margin: 40px auto; background: #ffffff; padding: 32px; border-radius: 8px; box-shadow: 0 4px 6px rgba(0,0,0,0.1); }
        .header h1 { color: #2c3e50; font-size: 28px; font-weight: 500; }
        .api-link { display: inline-block; margin-bottom: 24px; padding: 10px 20px; background: #3498db; color: white; text-decoration: none; border-radius: 6px; }
        .form-group { margin-bottom: 20px; }
        .form-group label { display: block; color: #666; font-size: 14px; font-weight: 500; margin-bottom: 6px; }
        .form-group input, .form-group select { width: 100%; padding: 10px 14px; border: 1px solid #ddd; border-radius: 6px; font-size: 14px; color: #333; }
        .submit-btn { width: 100%; padding: 12px; background: #2ecc71; color: white; border: none; border-radius: 6px; font-size: 16px; font-weight: 500; cursor: pointer; }
    </style>
</head>
<body>
    <div class="setup-container">
        <div class="header">
            <h1>Setup Configuration</h1>
        </div>

        <a href="https://console.developers.google.com/apis/credentials" target="_blank" class="api-link">
            Get API Key from Google Console
        </a>

        <form method="POST" action="/setup">
            <div class="form-group">
                <label for="apiKey">API Key</label>
                <input type="text" name="apiKey" id="apiKey" required placeholder="Enter your Google API Key">
            </div>

            <div class="form-group">
                <label for="scheduleDay">Schedule Day (0-6)</label>
                <select name="scheduleDay" id="scheduleDay">
                    <option value="0">Every Day (*)</option>
                    {{range .Days}}<option value="{{.Value}}">{{.Label}}</option>
                    {{end}}
                </select>
            </div>

            <div class="form-group">
                <label for="scheduleHour">Schedule Hour (0-23)</label>
                <select name="scheduleHour" id="scheduleHour">
                    <option value="0">Every Hour (*)</option>
                    {{range .Hours}}<option value="{{.Value}}">{{.Label}}</option>
                    {{end}}
                </select>
            </div>

            <div class="form-group">
                <label for="scheduleMinute">Schedule Minute (0-59)</label>
                <select name="scheduleMinute" id="scheduleMinute">
                    <option value="0">Every Minute (*)</option>
                    {{range .Minutes}}<option value="{{.Value}}">{{.Label}}</option>
                    {{end}}
                </select>
            </div>

            <div class="form-group">
                <label for="channelId">Channel ID</label>
                <input type="text" name="channelId" id="channelId" required placeholder="Enter your Channel ID">
            </div>

            <div class="form-group">
                <label for="clientId">OAuth Client ID (optional, needed for moderation)</label>
                <input type="text" name="clientId" id="clientId" placeholder="Enter your OAuth Client ID">
            </div>

            <div class="form-group">
                <label for="clientSecret">OAuth Client Secret (optional)</label>
                <input type="password" name="clientSecret" id="clientSecret" placeholder="Enter your OAuth Client Secret">
            </div>

            <button type="submit" class="submit-btn">Save Settings</button>
        </form>
    </div>
</body>
</html>
`))
